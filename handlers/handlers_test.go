package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dzlegal-backend/cache"
	"dzlegal-backend/gemini"
	"dzlegal-backend/models"
	"dzlegal-backend/service"
	"dzlegal-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestCatalogHandler(t *testing.T) {
	h := NewCatalogHandler()
	router := gin.New()
	router.GET("/api/sections", h.ListSections)
	router.GET("/api/sections/:key", h.GetSection)
	router.GET("/api/resources", h.ListResources)

	t.Run("list sections", func(t *testing.T) {
		w, env := doJSON(t, router, "GET", "/api/sections", "")
		if w.Code != http.StatusOK || !env.Success {
			t.Fatalf("Expected 200 success, got %d %s", w.Code, w.Body.String())
		}
		var data struct {
			Home     models.SectionCard   `json:"home"`
			Sections []models.SectionCard `json:"sections"`
		}
		decodeData(t, env, &data)
		if data.Home.Key != models.SectionHome {
			t.Errorf("Expected home card, got %s", data.Home.Key)
		}
		if len(data.Sections) != len(models.SectionCards) {
			t.Errorf("Expected %d cards, got %d", len(models.SectionCards), len(data.Sections))
		}
	})

	t.Run("main alias resolves to home", func(t *testing.T) {
		w, env := doJSON(t, router, "GET", "/api/sections/main", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var card models.SectionCard
		decodeData(t, env, &card)
		if card.Key != models.SectionHome {
			t.Errorf("Expected home, got %s", card.Key)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		w, env := doJSON(t, router, "GET", "/api/sections/tax_office", "")
		if w.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
			t.Errorf("Expected 404 NOT_FOUND, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("resources", func(t *testing.T) {
		_, env := doJSON(t, router, "GET", "/api/resources", "")
		var resources []models.OfficialResource
		decodeData(t, env, &resources)
		if len(resources) == 0 || resources[0].URL != "https://www.joradp.dz" {
			t.Errorf("Expected JORADP first, got %+v", resources)
		}
	})
}

func TestDeadlineHandler(t *testing.T) {
	h := NewDeadlineHandler(service.NewDeadlineService())
	router := gin.New()
	router.GET("/api/deadlines/procedures", h.ListProcedures)
	router.POST("/api/deadlines/calculate", h.Calculate)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantDate   string
		wantCode   string
	}{
		{name: "calendar days", body: `{"start_date":"2026-01-01","procedure":"civil_appeal"}`, wantStatus: http.StatusOK, wantDate: "2026-02-01"},
		{name: "business days", body: `{"start_date":"2026-01-01","procedure":"civil_appeal","policy":"business_days"}`, wantStatus: http.StatusOK, wantDate: "2026-02-12"},
		{name: "opposition", body: `{"start_date":"2026-01-01","procedure":"opposition"}`, wantStatus: http.StatusOK, wantDate: "2026-01-11"},
		{name: "unknown procedure", body: `{"start_date":"2026-01-01","procedure":"amicable"}`, wantStatus: http.StatusBadRequest, wantCode: "UNKNOWN_PROCEDURE"},
		{name: "bad date", body: `{"start_date":"01/01/2026","procedure":"opposition"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_START_DATE"},
		{name: "missing procedure", body: `{"start_date":"2026-01-01"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, "POST", "/api/deadlines/calculate", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error.Code != tt.wantCode {
					t.Errorf("Expected code %s, got %s", tt.wantCode, env.Error.Code)
				}
				return
			}
			var d models.Deadline
			decodeData(t, env, &d)
			if d.Deadline != tt.wantDate {
				t.Errorf("Expected %s, got %s", tt.wantDate, d.Deadline)
			}
		})
	}

	t.Run("empty start date returns null", func(t *testing.T) {
		w, env := doJSON(t, router, "POST", "/api/deadlines/calculate", `{"procedure":"cassation"}`)
		if w.Code != http.StatusOK || !env.Success {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if string(env.Data) != "null" {
			t.Errorf("Expected null data, got %s", env.Data)
		}
	})

	t.Run("procedures", func(t *testing.T) {
		_, env := doJSON(t, router, "GET", "/api/deadlines/procedures", "")
		var data struct {
			Policy     models.DeadlinePolicy `json:"policy"`
			Procedures []models.Procedure    `json:"procedures"`
		}
		decodeData(t, env, &data)
		if data.Policy != models.PolicyCalendarDays {
			t.Errorf("Expected calendar_days, got %s", data.Policy)
		}
		if len(data.Procedures) != 4 {
			t.Errorf("Expected 4 procedures, got %d", len(data.Procedures))
		}
	})
}

func newConsultationRouter(gen service.Generator) *gin.Engine {
	svc := service.NewConsultationService(
		service.ConsultationWithGenerator(gen),
		service.ConsultationWithCorrectionStore(&memCorrections{}),
		service.ConsultationWithTranscriptStore(cache.NewMemoryTranscripts(time.Hour)),
	)
	h := NewConsultationHandler(svc)
	router := gin.New()
	router.POST("/api/consultations", h.Consult)
	router.GET("/api/consultations/:session_id", h.GetTranscript)
	return router
}

func TestConsultationHandler(t *testing.T) {
	t.Run("answer is appended to transcript", func(t *testing.T) {
		router := newConsultationRouter(&fakeGenerator{})

		w, env := doJSON(t, router, "POST", "/api/consultations", `{"session_id":"s-1","query":"ما هو أجل المعارضة؟"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var data struct {
			SessionID string             `json:"session_id"`
			Message   models.ChatMessage `json:"message"`
		}
		decodeData(t, env, &data)
		if data.SessionID != "s-1" || data.Message.Sender != models.SenderAI || data.Message.Text != "ok" {
			t.Errorf("Unexpected result %+v", data)
		}
		if len(data.Message.Sources) != 1 {
			t.Errorf("Expected 1 source, got %d", len(data.Message.Sources))
		}

		_, env = doJSON(t, router, "GET", "/api/consultations/s-1", "")
		var transcript struct {
			Messages []models.ChatMessage `json:"messages"`
		}
		decodeData(t, env, &transcript)
		if len(transcript.Messages) != 2 {
			t.Fatalf("Expected 2 messages, got %d", len(transcript.Messages))
		}
		if transcript.Messages[0].Sender != models.SenderUser {
			t.Errorf("Expected user message first, got %s", transcript.Messages[0].Sender)
		}
	})

	t.Run("attachment is passed inline", func(t *testing.T) {
		var got []gemini.Attachment
		gen := &fakeGenerator{respond: func(req gemini.Request) (*gemini.Response, error) {
			got = req.Attachments
			return &gemini.Response{Text: "ok"}, nil
		}}
		router := newConsultationRouter(gen)

		body := fmt.Sprintf(`{"query":"حلل","attachments":[{"mime_type":"image/png","data":%q}]}`,
			base64.StdEncoding.EncodeToString([]byte("png")))
		w, _ := doJSON(t, router, "POST", "/api/consultations", body)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if len(got) != 1 || got[0].MIMEType != "image/png" || string(got[0].Data) != "png" {
			t.Errorf("Unexpected attachments %+v", got)
		}
	})

	t.Run("unsupported attachment", func(t *testing.T) {
		router := newConsultationRouter(&fakeGenerator{})
		body := `{"query":"x","attachments":[{"mime_type":"text/html","data":"eA=="}]}`
		w, env := doJSON(t, router, "POST", "/api/consultations", body)
		if w.Code != http.StatusUnsupportedMediaType || env.Error.Code != "INVALID_FILE_TYPE" {
			t.Errorf("Expected 415 INVALID_FILE_TYPE, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		router := newConsultationRouter(&fakeGenerator{})
		w, env := doJSON(t, router, "POST", "/api/consultations", `{"query":"   "}`)
		if w.Code != http.StatusBadRequest || env.Error.Code != "EMPTY_QUERY" {
			t.Errorf("Expected 400 EMPTY_QUERY, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("model failure shows generic message", func(t *testing.T) {
		router := newConsultationRouter(failingGenerator())
		w, env := doJSON(t, router, "POST", "/api/consultations", `{"query":"سؤال"}`)
		if w.Code != http.StatusBadGateway || env.Error.Code != "AI_UNAVAILABLE" {
			t.Fatalf("Expected 502 AI_UNAVAILABLE, got %d %s", w.Code, env.Error.Code)
		}
		if env.Error.Message != msgConsultationFailed {
			t.Errorf("Expected generic message, got %q", env.Error.Message)
		}
	})
}

func TestCorrectionHandler(t *testing.T) {
	gen := &fakeGenerator{respond: func(req gemini.Request) (*gemini.Response, error) {
		if strings.Contains(req.Text, "خاطئ") {
			return &gemini.Response{Text: "[رفض_خاطئ] النص غير مطابق"}, nil
		}
		return &gemini.Response{Text: "[تأكيد_صحيح] مطابق للجريدة الرسمية"}, nil
	}}
	svc := service.NewCorrectionService(
		service.CorrectionWithGenerator(gen),
		service.CorrectionWithStore(&memCorrections{}),
	)
	h := NewCorrectionHandler(svc, 20)
	router := gin.New()
	router.POST("/api/corrections", h.Submit)
	router.GET("/api/corrections", h.List)

	w, env := doJSON(t, router, "POST", "/api/corrections", `{"original_query":"أجل الاستئناف","corrected_text":"شهر واحد","lawyer_info":"محامي"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var c models.Correction
	decodeData(t, env, &c)
	if !c.Verified {
		t.Error("Expected verified correction")
	}
	if strings.Contains(c.Verdict, "[") {
		t.Errorf("Expected markers stripped, got %q", c.Verdict)
	}

	w, _ = doJSON(t, router, "POST", "/api/corrections", `{"original_query":"أجل المعارضة","corrected_text":"نص خاطئ"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected rejected correction to be stored, got %d", w.Code)
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "all", query: "", want: 2},
		{name: "verified only", query: "?verified=true", want: 1},
		{name: "limited", query: "?limit=1", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := doJSON(t, router, "GET", "/api/corrections"+tt.query, "")
			var data struct {
				Corrections []models.Correction `json:"corrections"`
				Total       int                 `json:"total"`
			}
			decodeData(t, env, &data)
			if data.Total != tt.want || len(data.Corrections) != tt.want {
				t.Errorf("Expected %d corrections, got %d", tt.want, data.Total)
			}
		})
	}

	t.Run("invalid limit", func(t *testing.T) {
		w, env := doJSON(t, router, "GET", "/api/corrections?limit=abc", "")
		if w.Code != http.StatusBadRequest || env.Error.Code != "INVALID_LIMIT" {
			t.Errorf("Expected 400 INVALID_LIMIT, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		w, _ := doJSON(t, router, "POST", "/api/corrections", `{"original_query":"x"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}

func TestContractHandler(t *testing.T) {
	h := NewContractHandler(service.NewContractService(service.ContractWithGenerator(&fakeGenerator{})))
	router := gin.New()
	router.GET("/api/contracts/templates", h.ListTemplates)
	router.POST("/api/contracts/draft", h.Draft)

	_, env := doJSON(t, router, "GET", "/api/contracts/templates", "")
	var templates []models.ContractTemplate
	decodeData(t, env, &templates)
	if len(templates) != len(models.ContractTemplates) {
		t.Errorf("Expected %d templates, got %d", len(models.ContractTemplates), len(templates))
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "draft", body: `{"contract_type":"sale_movable","details":"البائع: أحمد"}`, wantStatus: http.StatusOK},
		{name: "unknown type", body: `{"contract_type":"lease","details":"x"}`, wantStatus: http.StatusBadRequest, wantCode: "UNKNOWN_CONTRACT_TYPE"},
		{name: "missing details", body: `{"contract_type":"services"}`, wantStatus: http.StatusBadRequest, wantCode: "MISSING_DETAILS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, "POST", "/api/contracts/draft", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("Expected code %q, got %q", tt.wantCode, env.Error.Code)
			}
		})
	}
}

func newDocumentRouter(t *testing.T, gen service.Generator) *gin.Engine {
	t.Helper()
	st, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	svc := service.NewDocumentService(
		service.DocumentWithStore(newMemDocuments()),
		service.DocumentWithStorage(st),
		service.DocumentWithGenerator(gen),
	)
	h := NewDocumentHandler(svc)
	router := gin.New()
	router.POST("/api/documents/upload", h.Upload)
	router.GET("/api/documents/:id", h.Download)
	router.POST("/api/documents/analyze", h.Analyze)
	return router
}

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("session_id", "s-1"); err != nil {
		t.Fatal(err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, decodeEnvelope(t, w)
}

func TestDocumentHandler(t *testing.T) {
	var attachments []gemini.Attachment
	gen := &fakeGenerator{respond: func(req gemini.Request) (*gemini.Response, error) {
		attachments = req.Attachments
		return &gemini.Response{Text: "تحليل"}, nil
	}}
	router := newDocumentRouter(t, gen)

	w, env := uploadFile(t, router, "scan.png", []byte("png-bytes"))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var doc struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	}
	decodeData(t, env, &doc)
	if doc.MimeType != "image/png" {
		t.Errorf("Expected image/png, got %s", doc.MimeType)
	}

	t.Run("download", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/documents/"+doc.ID, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if w.Body.String() != "png-bytes" {
			t.Errorf("Unexpected body %q", w.Body.String())
		}
		if w.Header().Get("Content-Type") != "image/png" {
			t.Errorf("Unexpected content type %s", w.Header().Get("Content-Type"))
		}
	})

	t.Run("analyze", func(t *testing.T) {
		w, env := doJSON(t, router, "POST", "/api/documents/analyze", fmt.Sprintf(`{"document_ids":[%q],"query":"هل العقد صحيح؟"}`, doc.ID))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var data struct {
			Text string `json:"text"`
		}
		decodeData(t, env, &data)
		if data.Text != "تحليل" {
			t.Errorf("Unexpected text %q", data.Text)
		}
		if len(attachments) != 1 || string(attachments[0].Data) != "png-bytes" {
			t.Errorf("Expected stored bytes sent to model, got %+v", attachments)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		w, env := uploadFile(t, router, "notes.txt", []byte("text"))
		if w.Code != http.StatusUnsupportedMediaType || env.Error.Code != "INVALID_FILE_TYPE" {
			t.Errorf("Expected 415 INVALID_FILE_TYPE, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("unknown document", func(t *testing.T) {
		w, env := doJSON(t, router, "GET", "/api/documents/"+uuid.NewString(), "")
		if w.Code != http.StatusNotFound || env.Error.Code != "NOT_FOUND" {
			t.Errorf("Expected 404, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		w, _ := doJSON(t, router, "GET", "/api/documents/not-a-uuid", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})

	t.Run("too many documents", func(t *testing.T) {
		ids := make([]string, service.MaxAnalyzedDocuments+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("%q", uuid.NewString())
		}
		body := fmt.Sprintf(`{"document_ids":[%s]}`, strings.Join(ids, ","))
		w, env := doJSON(t, router, "POST", "/api/documents/analyze", body)
		if w.Code != http.StatusBadRequest || env.Error.Code != "INVALID_DOCUMENT_COUNT" {
			t.Errorf("Expected 400 INVALID_DOCUMENT_COUNT, got %d %s", w.Code, env.Error.Code)
		}
	})
}

func TestResearchHandler(t *testing.T) {
	jobs := newMemJobs()
	svc := service.NewResearchService(
		service.ResearchWithGenerator(&fakeGenerator{}),
		service.ResearchWithJobStore(jobs),
	)
	h := NewResearchHandler(svc)

	done := make(chan uuid.UUID, 1)
	h.process = func(ctx context.Context, jobID uuid.UUID) {
		if err := svc.ProcessResearch(ctx, jobID); err != nil {
			t.Errorf("ProcessResearch failed: %v", err)
		}
		done <- jobID
	}

	router := gin.New()
	router.POST("/api/research", h.StartResearch)
	router.POST("/api/research/stage", h.GenerateStage)
	router.GET("/api/research/jobs/:id", h.GetJob)

	w, env := doJSON(t, router, "POST", "/api/research", `{"topic":"الرقابة على دستورية القوانين"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var started struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &started)
	if started.Status != "pending" {
		t.Errorf("Expected pending, got %s", started.Status)
	}
	<-done

	_, env = doJSON(t, router, "GET", "/api/research/jobs/"+started.JobID, "")
	var job models.ResearchJob
	decodeData(t, env, &job)
	if job.Status != models.JobStatusCompleted {
		t.Errorf("Expected completed job, got %s", job.Status)
	}
	if job.Plan == nil || job.Content == nil || job.Conclusion == nil {
		t.Error("Expected all stages stored")
	}

	t.Run("stage", func(t *testing.T) {
		w, env := doJSON(t, router, "POST", "/api/research/stage", `{"topic":"x","stage":"plan"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var data struct {
			Stage models.ResearchStage `json:"stage"`
		}
		decodeData(t, env, &data)
		if data.Stage != models.StagePlan {
			t.Errorf("Expected plan, got %s", data.Stage)
		}
	})

	t.Run("unknown stage", func(t *testing.T) {
		w, env := doJSON(t, router, "POST", "/api/research/stage", `{"topic":"x","stage":"abstract"}`)
		if w.Code != http.StatusBadRequest || env.Error.Code != "UNKNOWN_STAGE" {
			t.Errorf("Expected 400 UNKNOWN_STAGE, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		w, _ := doJSON(t, router, "GET", "/api/research/jobs/"+uuid.NewString(), "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestRadarHandler(t *testing.T) {
	var queries []string
	gen := &fakeGenerator{respond: func(req gemini.Request) (*gemini.Response, error) {
		queries = append(queries, req.Text)
		return &gemini.Response{Text: "مستجدات"}, nil
	}}
	prefs := service.NewPreferencesService(newMemPreferences())
	radar := service.NewRadarService(
		service.RadarWithGenerator(gen),
		service.RadarWithCache(cache.NewMemoryRadarCache(), time.Hour),
		service.RadarWithPreferences(prefs),
	)
	h := NewRadarHandler(radar, prefs)
	router := gin.New()
	router.POST("/api/radar/scan", h.Scan)
	router.GET("/api/preferences/:client_id", h.GetPreferences)
	router.PUT("/api/preferences/:client_id", h.UpdatePreferences)

	t.Run("second scan is cached", func(t *testing.T) {
		_, env := doJSON(t, router, "POST", "/api/radar/scan", "")
		var first models.RadarResult
		decodeData(t, env, &first)
		if first.Cached {
			t.Error("Expected fresh result")
		}

		_, env = doJSON(t, router, "POST", "/api/radar/scan", "")
		var second models.RadarResult
		decodeData(t, env, &second)
		if !second.Cached {
			t.Error("Expected cached result")
		}
		if len(queries) != 1 {
			t.Errorf("Expected 1 model call, got %d", len(queries))
		}
	})

	t.Run("preferences round trip", func(t *testing.T) {
		w, env := doJSON(t, router, "GET", "/api/preferences/c-1", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		var p models.Preferences
		decodeData(t, env, &p)
		if len(p.Interests) != 0 {
			t.Errorf("Expected no interests, got %v", p.Interests)
		}

		w, _ = doJSON(t, router, "PUT", "/api/preferences/c-1", `{"interests":["tax","labor","tax"]}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		_, env = doJSON(t, router, "GET", "/api/preferences/c-1", "")
		decodeData(t, env, &p)
		if len(p.Interests) != 2 || p.Interests[0] != models.InterestTax {
			t.Errorf("Expected [tax labor], got %v", p.Interests)
		}
	})

	t.Run("invalid interest", func(t *testing.T) {
		w, env := doJSON(t, router, "PUT", "/api/preferences/c-1", `{"interests":["astrology"]}`)
		if w.Code != http.StatusBadRequest || env.Error.Code != "INVALID_INTEREST" {
			t.Errorf("Expected 400 INVALID_INTEREST, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("scan uses client interests", func(t *testing.T) {
		_, env := doJSON(t, router, "POST", "/api/radar/scan", `{"client_id":"c-1"}`)
		var res models.RadarResult
		decodeData(t, env, &res)
		if !strings.Contains(res.Query, models.InterestTitles[models.InterestTax]) {
			t.Errorf("Expected query built from interests, got %q", res.Query)
		}
	})

	t.Run("model failure", func(t *testing.T) {
		h := NewRadarHandler(service.NewRadarService(service.RadarWithGenerator(failingGenerator())), prefs)
		r := gin.New()
		r.POST("/api/radar/scan", h.Scan)
		w, env := doJSON(t, r, "POST", "/api/radar/scan", `{"query":"قانون المالية"}`)
		if w.Code != http.StatusBadGateway || env.Error.Message != msgRadarFailed {
			t.Errorf("Expected 502 with radar message, got %d %q", w.Code, env.Error.Message)
		}
	})
}

func TestResearchHandlerWaitsForJobs(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{respond: func(req gemini.Request) (*gemini.Response, error) {
		<-release
		return &gemini.Response{Text: "ok"}, nil
	}}
	jobs := newMemJobs()
	h := NewResearchHandler(service.NewResearchService(
		service.ResearchWithGenerator(gen),
		service.ResearchWithJobStore(jobs),
	))
	router := gin.New()
	router.POST("/api/research", h.StartResearch)

	w, env := doJSON(t, router, "POST", "/api/research", `{"topic":"عقود الإذعان"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var started struct {
		JobID uuid.UUID `json:"job_id"`
	}
	decodeData(t, env, &started)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := h.Wait(ctx); err == nil {
		t.Fatal("Expected Wait to time out while the job is blocked")
	}

	close(release)
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	job, err := jobs.GetByID(context.Background(), started.JobID)
	if err != nil {
		t.Fatalf("Failed to load job: %v", err)
	}
	if job.Status != models.JobStatusCompleted {
		t.Errorf("Expected completed job after Wait, got %s", job.Status)
	}
}

func TestConsultationHandlerLimits(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewConsultationHandler(service.NewConsultationService(service.ConsultationWithGenerator(gen)))
	router := gin.New()
	router.POST("/api/consultations", h.Consult)

	t.Run("too many attachments", func(t *testing.T) {
		parts := make([]string, service.MaxAnalyzedDocuments+1)
		for i := range parts {
			parts[i] = `{"mime_type":"image/png","data":"cG5n"}`
		}
		body := fmt.Sprintf(`{"query":"حلل","attachments":[%s]}`, strings.Join(parts, ","))

		w, env := doJSON(t, router, "POST", "/api/consultations", body)
		if w.Code != http.StatusBadRequest || env.Error.Code != "TOO_MANY_ATTACHMENTS" {
			t.Errorf("Expected 400 TOO_MANY_ATTACHMENTS, got %d %s", w.Code, env.Error.Code)
		}
	})

	t.Run("body over limit", func(t *testing.T) {
		h.maxBodySize = 64
		defer func() { h.maxBodySize = 1 << 20 }()

		body := fmt.Sprintf(`{"query":%q}`, strings.Repeat("س", 100))
		w, env := doJSON(t, router, "POST", "/api/consultations", body)
		if w.Code != http.StatusRequestEntityTooLarge || env.Error.Code != "REQUEST_TOO_LARGE" {
			t.Errorf("Expected 413 REQUEST_TOO_LARGE, got %d %s", w.Code, env.Error.Code)
		}
	})

	if gen.calls != 0 {
		t.Errorf("Expected no model calls for rejected requests, got %d", gen.calls)
	}
}

func TestCorrectionHandlerDefaultPageSize(t *testing.T) {
	store := &memCorrections{}
	for i := 0; i < 5; i++ {
		store.Create(context.Background(), &models.Correction{OriginalQuery: "q", CorrectedText: "c", Verified: true})
	}
	h := NewCorrectionHandler(service.NewCorrectionService(service.CorrectionWithStore(store)), 3)
	router := gin.New()
	router.GET("/api/corrections", h.List)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{name: "no limit uses default", query: "", want: 3},
		{name: "zero uses default", query: "?limit=0", want: 3},
		{name: "explicit limit", query: "?limit=2", want: 2},
		{name: "above default", query: "?limit=5", want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := doJSON(t, router, "GET", "/api/corrections"+tt.query, "")
			var data struct {
				Total int `json:"total"`
			}
			decodeData(t, env, &data)
			if data.Total != tt.want {
				t.Errorf("Expected %d corrections, got %d", tt.want, data.Total)
			}
		})
	}
}

func TestNewCorrectionHandlerBoundsDefault(t *testing.T) {
	for _, n := range []int{0, -1, maxCorrectionsPage + 1} {
		if got := NewCorrectionHandler(nil, n).defaultLimit; got != maxCorrectionsPage {
			t.Errorf("defaultLimit(%d): expected %d, got %d", n, maxCorrectionsPage, got)
		}
	}
}

package models

// Section is a panel of the single-page app
type Section string

const (
	SectionHome             Section = "home"
	SectionConsultation     Section = "consultation"
	SectionFileAnalysis     Section = "file_analysis"
	SectionContractDrafting Section = "contract_drafting"
	SectionResearch         Section = "research"
	SectionRadar            Section = "radar"
	SectionResources        Section = "resources"
	SectionProcedures       Section = "procedures"
	SectionDataProtection   Section = "data_protection"
)

// sectionAliases maps legacy names onto sections. "main" was the landing grid.
var sectionAliases = map[string]Section{
	"main": SectionHome,
}

// SectionCard is one entry of the landing grid
type SectionCard struct {
	Key         Section `json:"key"`
	Title       string  `json:"title"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
}

// SectionCards lists the landing grid in display order. Home is not a card.
var SectionCards = []SectionCard{
	{Key: SectionConsultation, Title: "استشارة قانونية", Icon: "⚖️", Description: "إجابات دقيقة مع مراجعة مستجدات آخر 10 أيام"},
	{Key: SectionFileAnalysis, Title: "تحليل الوثائق", Icon: "🔍", Description: "تحليل العقود والصور ومطابقتها مع الجريدة الرسمية"},
	{Key: SectionContractDrafting, Title: "صياغة العقود", Icon: "📝", Description: "نماذج عقود عرفية محدثة"},
	{Key: SectionResearch, Title: "البحث العلمي", Icon: "🎓", Description: "بحوث أكاديمية بتهميش دقيق"},
	{Key: SectionRadar, Title: "الرادار القانوني", Icon: "📡", Description: "آخر المستجدات التشريعية مصنفة حسب الفرع"},
	{Key: SectionProcedures, Title: "الآجال الإجرائية", Icon: "⏳", Description: "حساب آجال الطعن مع احتساب عطلة نهاية الأسبوع"},
	{Key: SectionResources, Title: "المصادر والمراجع", Icon: "📚", Description: "المصادر الرسمية المعتمدة"},
	{Key: SectionDataProtection, Title: "حماية المعطيات", Icon: "🔒", Description: "التزامات القانون 18-07"},
}

// HomeCard describes the landing grid itself
var HomeCard = SectionCard{Key: SectionHome, Title: "منصة القانون الجزائرية", Icon: "🇩🇿", Description: "القانون ليس قيداً للحرية، بل هو الحصن الذي يحميها"}

// ParseSection resolves a section key, accepting aliases
func ParseSection(key string) (Section, bool) {
	if s, ok := sectionAliases[key]; ok {
		return s, true
	}
	s := Section(key)
	if s == SectionHome {
		return s, true
	}
	for _, card := range SectionCards {
		if card.Key == s {
			return s, true
		}
	}
	return "", false
}

// FindSectionCard returns the card for s
func FindSectionCard(s Section) (SectionCard, bool) {
	if s == SectionHome {
		return HomeCard, true
	}
	for _, card := range SectionCards {
		if card.Key == s {
			return card, true
		}
	}
	return SectionCard{}, false
}

// OfficialResource is an authoritative source of Algerian law
type OfficialResource struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// OfficialResources lists the sources the platform defers to
var OfficialResources = []OfficialResource{
	{Name: "الجريدة الرسمية للجمهورية الجزائرية", Icon: "📜", URL: "https://www.joradp.dz", Description: "النصوص التشريعية والتنظيمية المنشورة (JORADP)"},
	{Name: "رئاسة الجمهورية", Icon: "🏛️", URL: "https://www.el-mouradia.dz", Description: "المراسيم الرئاسية والبيانات الرسمية"},
	{Name: "وزارة العدل", Icon: "⚖️", URL: "https://www.mjustice.dz", Description: "الإجراءات القضائية والخدمات الرقمية"},
	{Name: "المحكمة الدستورية", Icon: "🏛️", URL: "https://cour-constitutionnelle.dz", Description: "قرارات وآراء الرقابة الدستورية"},
}

package service

import (
	"fmt"
	"strings"

	"dzlegal-backend/models"
)

const (
	identityInstruction   = "عرّف نفسك بأنك 'مساعدك القانوني الذكي'."
	updateCheck           = "راجع الجريدة الرسمية (JORADP) والمواقع السيادية وأعط الأولوية لأي نص صدر في آخر 10 أيام."
	reasoningRules        = "عند التعارض: الدستور ثم المعاهدات المصادق عليها ثم القانون، والنص الخاص يقيد العام، واللاحق يلغي السابق، ولا رجعية للقوانين."
	dataProtectionNotice  = "لا تطلب ولا تعالج بيانات هوية حساسة طبقا للقانون 18-07، واستعمل رموزا مستعارة."
	plainTextInstruction  = "لا تستعمل رموز التنسيق (# و *)، استعمل عناوين نصية وأسطرا جديدة فقط."
	academicMethodology   = "اعتمد المنهجية الجزائرية: هوامش بصيغة [1] المؤلف، المرجع، الصفحة، مع تحليل موسع."
	defaultRadarQuery     = "أحدث القوانين الجزائرية الصادرة في آخر 10 أيام"
	verifiedContextHeader = "تصحيحات مجتمعية موثقة من الجريدة الرسمية، اعتمدها عند الاقتضاء:"
)

const (
	markerVerified = "[تأكيد_صحيح]"
	markerRejected = "[رفض_خاطئ]"
)

func joinInstructions(parts ...string) string {
	return strings.Join(parts, " ")
}

var (
	consultationInstruction = joinInstructions(
		"أنت مساعد قانوني جزائري.", identityInstruction, updateCheck, reasoningRules,
		"صنف الإجابة حسب الفرع القانوني واستند حصرا إلى الجريدة الرسمية الجزائرية.",
		dataProtectionNotice, plainTextInstruction,
	)

	verificationInstruction = joinInstructions(
		"أنت مدقق قانوني.", identityInstruction,
		"لا تعتمد أي تعديل إلا بعد مطابقته حرفيا مع نص الجريدة الرسمية، واذكر رقم العدد والمادة عند الرفض.",
		"ابدأ ردك بـ "+markerVerified+" عند المطابقة التامة أو "+markerRejected+" عند التعارض.",
		plainTextInstruction,
	)

	contractInstruction = joinInstructions(
		"أنت مساعد قانوني جزائري متخصص في صياغة العقود العرفية.", identityInstruction, updateCheck,
		reasoningRules, dataProtectionNotice, plainTextInstruction,
	)

	documentInstruction = joinInstructions(
		"أنت مساعد قانوني جزائري متخصص في تحليل الوثائق.", identityInstruction, updateCheck,
		"قارن بين الوثائق إذا كانت تخص نفس الملف.", reasoningRules, plainTextInstruction,
	)

	researchInstruction = joinInstructions(
		"أنت مساعد قانوني جزائري متخصص في البحوث الأكاديمية.", identityInstruction, updateCheck,
		reasoningRules, academicMethodology, dataProtectionNotice, plainTextInstruction,
	)

	radarInstruction = joinInstructions(
		"أنت بوت الرادار القانوني.", identityInstruction,
		"صنف المستجدات فورا واربطها بالجرائد الرسمية المحدثة مع التركيز على آخر 10 أيام.",
		reasoningRules, plainTextInstruction,
	)
)

func consultationPrompt(query string, corrections []*models.Correction) string {
	if len(corrections) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(verifiedContextHeader)
	for _, c := range corrections {
		fmt.Fprintf(&b, "\n- %s: %s", c.OriginalQuery, c.CorrectedText)
	}
	return b.String()
}

func verificationPrompt(query, correction string) string {
	return fmt.Sprintf("المسألة القانونية: %q\nالنص المراد التحقق منه: %q\nتحقق من المطابقة الحرفية مع joradp.dz.", query, correction)
}

func contractPrompt(title, details string) string {
	return fmt.Sprintf("صغ نموذج %s عرفي جزائري وفق التشريع الساري: %s", title, details)
}

func documentPrompt(query string) string {
	return fmt.Sprintf("حلل هذه الوثائق الجزائرية مجتمعة وقدم استشارة قانونية شاملة تربط بينها: %s", query)
}

func researchPrompt(topic string, stage models.ResearchStage, context string) string {
	switch stage {
	case models.StagePlan:
		return fmt.Sprintf("ضع خطة بحث أكاديمية لموضوع: %s.", topic)
	case models.StageContent:
		return fmt.Sprintf("اكتب محتوى البحث لموضوع %s بتوسع مع تهميش دقيق. المراجع: %s", topic, context)
	default:
		if context == "" {
			return fmt.Sprintf("اكتب الخاتمة والمراجع لموضوع: %s.", topic)
		}
		return fmt.Sprintf("اكتب الخاتمة والمراجع لموضوع: %s.\nملخص ما سبق: %s", topic, context)
	}
}

func radarPrompt(query string) string {
	return fmt.Sprintf("تمشيط شامل لـ joradp.dz والمواقع السيادية بخصوص: %s.\n"+
		"صنف النتائج حسب الفروع القانونية، واذكر لكل مستجد الفرع والعنوان والملخص والتاريخ ورابطا مباشرا.", query)
}

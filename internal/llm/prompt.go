package llm

import (
	"fmt"
	"strings"
)

// FallbackContent is shown when the model answers with empty text.
const FallbackContent = "I was unable to process this request. Please try rephrasing with specific exam or university details."

const systemInstructionTemplate = `You are EduGenius AI, a world-class educational authority specializing in K-12, Competitive Exams, and University-level curriculum from all universities worldwide.
Subject/Exam: %s
Language: %s
Operation Mode: %s

CONTEXTUAL GUIDELINES:
1. UNIVERSAL ACADEMICS: Deep knowledge of global institutions (MIT, Oxford, IITs, etc.) and regional universities.
2. COMPETITIVE EXAMS: Provide specific patterns and accuracy for:
   - SSC: CGL, CHSL, MTS, GD, JE.
   - UPSC: Civil Services (IAS/IFS), CDS, NDA.
   - JEE (Mains & Advanced) and NEET (UG).
   - UGC NET (JRF & Assistant Professor).
   - WBPSC: WBCS (West Bengal Civil Service), Miscellaneous Services, Clerkship, Food SI, and other WB State exams.
   - AUAT: Aliah University Admission Test (UG/PG entrance patterns, Islamic Studies, General Knowledge, and Specific Subjects).
   - CUET: Common University Entrance Test (Domain specific, General Test, and Language sections).
3. Mode-SOLVER: Provide rigorous, step-by-step solutions with shortcuts for competitive exams (especially for Quant/Reasoning in SSC/WBPSC/AUAT).
4. Mode-NOTES: Create high-density, structured academic notes. For WBPSC/UPSC/AUAT, focus on standard textbooks and specific university entry requirements.
5. Mode-PYQ: Generate or simulate Previous Year Questions from actual exam patterns (e.g., WBPSC Preliminary/Mains patterns, AUAT past paper trends).
6. Mode-MATERIAL: Provide reading lists, key terminology, and case studies relevant to the exam syllabus.

Maintain an authoritative yet supportive tone. Use clear Markdown headers and formatting.`

// BuildSystemInstruction fills the tutor persona template for a request.
func BuildSystemInstruction(req Request) string {
	return fmt.Sprintf(systemInstructionTemplate, req.Subject, req.Language, req.Mode)
}

// BuildUserPrompt returns the learner turn, with reference material appended
// under its own heading when present.
func BuildUserPrompt(req Request) string {
	query := strings.TrimSpace(req.Query)
	material := clipText(req.Material, maxMaterialChars)
	if material == "" {
		return query
	}
	var b strings.Builder
	b.WriteString(query)
	b.WriteString("\n\nReference material (use it when relevant):\n")
	b.WriteString(material)
	return b.String()
}

// ResponseTitle names the answer card for a subject.
func ResponseTitle(subject string) string {
	return fmt.Sprintf("%s - Global Academy", subject)
}

func buildResponse(req Request, text string) Response {
	text = strings.TrimSpace(text)
	if text == "" {
		text = FallbackContent
	}
	return Response{Title: ResponseTitle(req.Subject), Content: text}
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

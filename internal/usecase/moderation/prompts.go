package moderation

import (
	"fmt"

	"github.com/accordfamily/accord-backend/pkg/ai"
)

// familyViolenceAct is the behavioral definition every compliance evaluation
// and rewrite is anchored to, alongside the active court orders.
const familyViolenceAct = `Family Violence includes behaviors such as:
1. Physical, sexual, emotional, psychological, or economic abuse.
2. Threats to kill or harm the individual, children, other family members, friends, or pets.
3. Coercive behavior including:
    - Isolation or control over the individual's activities.
    - Coercing relinquishment of control over assets and income.
    - Removing or keeping family member's property.
    - Preventing access to joint financial assets.
    - Preventing employment or coercing into signing contracts or legal documents.
4. Emotional or psychological abuse such as:
    - Repeated derogatory taunts, including, but not limited to, racial or sexual orientation-related.
    - Threatening to disclose sensitive personal information, including intimate images or videos.
    - Preventing connections with family, friends, or culture.
    - Threats of suicide or self-harm.
5. Stalking, surveillance, or following.
6. Behavior that controls or dominates, instilling fear for safety.
7. Using or threatening violence with weapons.
8. Sexual abuse or sexually coercive behaviors.
9. Intentionally damaging property or threats to do so.
10. Deprivation of or threats to a family member's liberty.
11. Actions or threats relating to choking.
12. Subtle or indirect communication that may include humor or sarcasm to veil threats or coercive statements.
13. Use of digital surveillance or control over digital activities and communications.
14. Legal intimidation or threats involving the misuse of legal processes.
15. Indications of escalation or seriousness in tone or content that could suggest an underlying threat or control, detectable even in a single message.
16. Any other behaviors or patterns that could reasonably be interpreted as potential family violence, including those not explicitly listed, based on the severity, context, or cumulative impact of the communications.

Note: These behaviors may constitute family violence even if they do not qualify as a criminal offense.`

// languageNames maps supported language codes to their display names.
var languageNames = map[string]string{
	"en": "English",
	"zh": "Mandarin Chinese",
	"hi": "Hindi",
	"es": "Spanish",
	"fr": "French",
	"ar": "Arabic",
	"bn": "Bengali",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
}

// LanguageName resolves a language code to its display name, defaulting to English.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}

// IsSupportedLanguage reports whether the language code is one the platform handles.
func IsSupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

func compliancePrompt(message, orders, senderRole, recipientRole, language string) ai.CompletionRequest {
	languageInstruction := ""
	if language != "en" {
		languageInstruction = fmt.Sprintf(" Respond ONLY in %s language.", LanguageName(language))
	}

	return ai.CompletionRequest{
		System: "You are an AI assistant tasked with evaluating whether a given message abides by the provided orders " +
			"and the comprehensive definition of family violence included. Assess if the message is polite, respectful, " +
			"and constructive, and provide your evaluation as 'yes' or 'no'." + languageInstruction,
		Messages: []ai.Message{
			{Role: "user", Content: fmt.Sprintf("[ORDERS] %s\n[FAMILY VIOLENCE ACT] %s\n[FROM] %s\n[TO] %s\n[MESSAGE] %s\n[EVALUATION]",
				orders, familyViolenceAct, senderRole, recipientRole, message)},
		},
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}

func rewritePrompt(message, orders, senderRole, recipientRole, language string) ai.CompletionRequest {
	languageInstruction := ""
	if language != "en" {
		languageInstruction = fmt.Sprintf(" Return the rewritten message ONLY in %s language.", LanguageName(language))
	}

	return ai.CompletionRequest{
		System: "You are an AI assistant tasked with rewriting a given message to ensure it complies with the provided " +
			"orders, including adherence to the Family Violence Protection Act. The rewritten message should be polite, " +
			"respectful, and constructive, free from hostility, rude or disrespectful language, or inappropriate demands. " +
			"Focus on eliminating any forms of abuse or threats as detailed in the Family Violence Act. Return only the " +
			"rewritten message without any prelude or additional text." + languageInstruction,
		Messages: []ai.Message{
			{Role: "user", Content: fmt.Sprintf("[ORDERS] %s\n[FAMILY VIOLENCE ACT] %s\n[FROM] %s\n[TO] %s\n[ORIGINAL MESSAGE] %s\n[REWRITTEN MESSAGE]",
				orders, familyViolenceAct, senderRole, recipientRole, message)},
		},
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}

func translatePrompt(message, targetLanguage string) ai.CompletionRequest {
	name := LanguageName(targetLanguage)

	return ai.CompletionRequest{
		System: fmt.Sprintf("You are a professional translator for family communication. Translate the text to natural, "+
			"conversational %s while preserving the exact meaning, tone, and intent. Return ONLY the translated text.", name),
		Messages: []ai.Message{
			{Role: "user", Content: fmt.Sprintf("Translate to %s: %s", name, message)},
		},
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

package scanner

import "github.com/jamesruggles/secuscan/internal/model"

var inProgressMessages = map[model.Language]string{
	model.LangFrench:  "Analyse en cours...",
	model.LangEnglish: "Analysis in progress...",
	model.LangArabic:  "التحليل قيد التنفيذ...",
}

var failureMessages = map[model.Language]string{
	model.LangFrench:  "L'analyse a échoué. Veuillez vérifier la cible ou réessayer.",
	model.LangEnglish: "The analysis failed. Please check the target or try again.",
	model.LangArabic:  "فشل التحليل. يرجى التحقق من الهدف أو المحاولة مرة أخرى.",
}

// InProgressMessage is the placeholder narrative of a running scan.
func InProgressMessage(lang model.Language) string {
	return inProgressMessages[lang.Normalize()]
}

// FailureMessage is the fixed narrative stored on a failed scan.
func FailureMessage(lang model.Language) string {
	return failureMessages[lang.Normalize()]
}

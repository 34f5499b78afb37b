package speech

// voiceTable maps language tags to synthesis voices. Languages without a
// provisioned native voice fall back to the default English voice.
var voiceTable = map[string]string{
	"en-US": "en-US-natalie",
	"en-UK": "en-UK-theo",
	"es-ES": "es-ES-elvira",
	"de-DE": "de-DE-matthias",
	"pt-BR": "pt-BR-heitor",
	"ja-JP": "ja-JP-kenji",
	"ko-KR": "ko-KR-gyeong",
	"zh-CN": "zh-CN-tao",
	"hi-IN": "hi-IN-kabir",
	"ta-IN": "ta-IN-iniya",
	"bn-IN": "bn-IN-anwesha",
	"pl-PL": "pl-PL-jacek",
	// No native voices provisioned yet
	"fr-FR": "en-US-natalie",
	"it-IT": "en-US-natalie",
	"ar-SA": "en-US-natalie",
}

// SelectVoice resolves the voice id with the precedence
// explicit override > language table > configured default.
func SelectVoice(override, language, defaultVoice string) string {
	if override != "" {
		return override
	}
	if v, ok := voiceTable[language]; ok {
		return v
	}
	return defaultVoice
}

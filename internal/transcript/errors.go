package transcript

// ErrorCode is a terminal speech-recognition error reported by the
// client's recognition engine. The set is closed; unknown codes are
// normalized to CodeOther.
type ErrorCode string

const (
	CodeNoSpeech          ErrorCode = "no-speech"
	CodeNotAllowed        ErrorCode = "not-allowed"
	CodeServiceNotAllowed ErrorCode = "service-not-allowed"
	CodeAudioCapture      ErrorCode = "audio-capture"
	CodeOther             ErrorCode = "other"
)

// Normalize maps an arbitrary reported code onto the closed set.
func Normalize(code string) ErrorCode {
	switch ErrorCode(code) {
	case CodeNoSpeech, CodeNotAllowed, CodeServiceNotAllowed, CodeAudioCapture:
		return ErrorCode(code)
	default:
		return CodeOther
	}
}

// Message returns the fixed user-facing message for an error code.
func Message(code ErrorCode) string {
	switch code {
	case CodeNoSpeech:
		return "No speech was detected. The answer was saved as captured."
	case CodeNotAllowed:
		return "Microphone permission was denied. Speech capture stopped."
	case CodeServiceNotAllowed:
		return "The speech recognition service is not allowed in this browser."
	case CodeAudioCapture:
		return "No microphone was found or audio capture failed."
	default:
		return "Speech recognition stopped unexpectedly."
	}
}

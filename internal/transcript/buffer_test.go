package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferJoinsFinalFragments(t *testing.T) {
	b := NewBuffer()
	b.Append("I designed")
	b.Append("the ingestion pipeline")
	b.Append("at my last job")

	assert.Equal(t, "I designed the ingestion pipeline at my last job", b.String())
	assert.False(t, b.Empty())
}

func TestBufferDropsBlankFragments(t *testing.T) {
	b := NewBuffer()
	b.Append("")
	b.Append("   ")
	assert.True(t, b.Empty())
	assert.Equal(t, "", b.String())

	b.Append("kept")
	assert.Equal(t, "kept", b.String())
}

func TestBufferInterimIsDisplayOnly(t *testing.T) {
	b := NewBuffer()
	b.SetInterim("I was sayi")
	assert.Equal(t, "I was sayi", b.Interim())
	assert.Equal(t, "", b.String())
	assert.True(t, b.Empty())

	// A finalized fragment replaces the pending interim.
	b.Append("I was saying something")
	assert.Equal(t, "", b.Interim())
	assert.Equal(t, "I was saying something", b.String())
}

func TestNormalizeClosesTheCodeSet(t *testing.T) {
	assert.Equal(t, CodeNoSpeech, Normalize("no-speech"))
	assert.Equal(t, CodeNotAllowed, Normalize("not-allowed"))
	assert.Equal(t, CodeServiceNotAllowed, Normalize("service-not-allowed"))
	assert.Equal(t, CodeAudioCapture, Normalize("audio-capture"))
	assert.Equal(t, CodeOther, Normalize("network"))
	assert.Equal(t, CodeOther, Normalize(""))
}

func TestMessageIsFixedPerCode(t *testing.T) {
	for _, code := range []ErrorCode{CodeNoSpeech, CodeNotAllowed, CodeServiceNotAllowed, CodeAudioCapture, CodeOther} {
		assert.NotEmpty(t, Message(code))
	}
	assert.Equal(t, Message(CodeOther), Message(Normalize("weird-new-code")))
}

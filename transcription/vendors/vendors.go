// Package vendors builds the transcription adapter for a vendor id.
package vendors

import (
	"github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/aliyun"
	"github.com/kbukum/scribe/transcription/azure"
	"github.com/kbukum/scribe/transcription/deepgram"
	"github.com/kbukum/scribe/transcription/elevenlabs"
	"github.com/kbukum/scribe/transcription/iflytek"
	"github.com/kbukum/scribe/transcription/openai"
	"github.com/kbukum/scribe/transcription/soniox"
	"github.com/kbukum/scribe/transcription/tencent"
	"github.com/kbukum/scribe/transcription/volcengine"
)

// Factory creates an adapter; the task orchestrator takes one so tests can
// substitute fakes.
type Factory func(v transcription.Vendor, opts transcription.Options) (transcription.Adapter, error)

// New returns the adapter for v.
func New(v transcription.Vendor, opts transcription.Options) (transcription.Adapter, error) {
	switch v {
	case transcription.VendorOpenAI, transcription.VendorGroq:
		return openai.New(v, opts)
	case transcription.VendorDeepgram:
		return deepgram.New(opts)
	case transcription.VendorElevenLabs:
		return elevenlabs.New(opts)
	case transcription.VendorSoniox:
		return soniox.New(opts)
	case transcription.VendorAzureGlobal, transcription.VendorAzureCN:
		return azure.New(v, opts)
	case transcription.VendorAliyun:
		return aliyun.New(opts)
	case transcription.VendorTencent:
		return tencent.New(opts)
	case transcription.VendorVolcengine:
		return volcengine.New(opts)
	case transcription.VendorIFlytek:
		return iflytek.New(opts)
	default:
		return nil, errors.UnsupportedVendor("asr", string(v))
	}
}

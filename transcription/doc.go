// Package transcription defines the speech-recognition adapter contract and
// the canonical transcript model shared by every vendor.
//
// Each vendor lives in its own subpackage and drives one of the protocol
// strategies in transcription/protocol. Vendor responses are decoded into a
// typed schema and mapped through transcription/normalize, so callers only
// ever see a Transcript.
//
// # Vendors
//
//   - transcription/openai: OpenAI and Groq whisper endpoints
//   - transcription/deepgram: Deepgram pre-recorded listen API
//   - transcription/elevenlabs: ElevenLabs speech-to-text
//   - transcription/azure: Azure fast transcription (global and China)
//   - transcription/soniox: Soniox async transcription
//   - transcription/aliyun: DashScope paraformer file transcription
//   - transcription/tencent: Tencent Cloud recording recognition
//   - transcription/volcengine: Volcengine big-model file recognition
//   - transcription/iflytek: iFlytek long-form file transcription
//
// # Usage
//
//	adapter, err := vendors.New(transcription.VendorDeepgram, opts)
//	tr, err := adapter.Transcribe(ctx, file, creds)
package transcription

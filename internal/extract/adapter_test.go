package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/billbot/constants"
	"github.com/joseph-ayodele/billbot/internal/common"
	"github.com/joseph-ayodele/billbot/internal/entity"
	"github.com/joseph-ayodele/billbot/internal/llm"
)

type fakeExtractor struct {
	got    llm.OrderRequest
	fields llm.OrderFields
	err    error
}

func (f *fakeExtractor) ExtractOrder(_ context.Context, req llm.OrderRequest) (llm.OrderFields, []byte, error) {
	f.got = req
	return f.fields, nil, f.err
}

type fakeTranscriber struct {
	text     string
	err      error
	filename string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, filename, _ string) (string, error) {
	f.filename = filename
	return f.text, f.err
}

type fakeFetcher struct {
	media Media
	err   error
	urls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (Media, error) {
	f.urls = append(f.urls, url)
	return f.media, f.err
}

type fakeOCR struct {
	text string
	err  error
}

func (f fakeOCR) ExtractImageText(context.Context, []byte, string) (TextExtractionResult, error) {
	return TextExtractionResult{Text: f.text}, f.err
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

func completeFields() llm.OrderFields {
	return llm.OrderFields{
		Status: "complete",
		Data:   llm.OrderData{Customer: str("Ramesh"), Items: []llm.ItemFields{{Name: "Rice", Qty: f64(10), Rate: f64(50)}}},
	}
}

func TestLLMAdapter_Text(t *testing.T) {
	ex := &fakeExtractor{fields: completeFields()}
	a := NewLLMAdapter(ex, nil, nil, nil)
	prior := &entity.PartialOrder{Customer: str("Ramesh")}

	res, err := a.Extract(context.Background(), Input{Kind: constants.TEXT, Text: "  10 rice at 50 "}, prior)
	require.NoError(t, err)
	assert.Equal(t, entity.ExtractionComplete, res.Status)
	assert.Equal(t, "10 rice at 50", ex.got.Text)
	assert.Same(t, prior, ex.got.Prior)
	assert.Empty(t, ex.got.ImageDataURL)
}

func TestLLMAdapter_EmptyText(t *testing.T) {
	ex := &fakeExtractor{}
	a := NewLLMAdapter(ex, nil, nil, nil)
	_, err := a.Extract(context.Background(), Input{Kind: constants.TEXT, Text: "   "}, nil)
	assert.ErrorIs(t, err, common.ErrNoInput)
}

func TestLLMAdapter_ImageWithOCRHint(t *testing.T) {
	ex := &fakeExtractor{fields: completeFields()}
	fetch := &fakeFetcher{media: Media{Data: []byte{1, 2, 3}, ContentType: "image/png"}}
	a := NewLLMAdapter(ex, nil, fetch, nil, WithOCR(fakeOCR{text: "10 rice"}))

	_, err := a.Extract(context.Background(), Input{Kind: constants.IMAGE, MediaURL: "https://api.twilio.com/m/1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://api.twilio.com/m/1"}, fetch.urls)
	assert.True(t, strings.HasPrefix(ex.got.ImageDataURL, "data:image/png;base64,"))
	assert.Equal(t, "10 rice", ex.got.OCRHint)
	assert.Equal(t, constants.IMAGE, ex.got.Kind)
}

func TestLLMAdapter_ImageOCRFailureIsNotFatal(t *testing.T) {
	ex := &fakeExtractor{fields: completeFields()}
	fetch := &fakeFetcher{media: Media{Data: []byte{1}}}
	a := NewLLMAdapter(ex, nil, fetch, nil, WithOCR(fakeOCR{err: errors.New("no tesseract")}))

	_, err := a.Extract(context.Background(), Input{Kind: constants.IMAGE, MediaURL: "https://x/1", ContentType: "image/jpeg"}, nil)
	require.NoError(t, err)
	assert.Empty(t, ex.got.OCRHint)
	assert.True(t, strings.HasPrefix(ex.got.ImageDataURL, "data:image/jpeg;base64,"))
}

func TestLLMAdapter_AudioTranscribesFirst(t *testing.T) {
	ex := &fakeExtractor{fields: completeFields()}
	tr := &fakeTranscriber{text: "Ramesh ko das kilo chawal pachas rupaye"}
	fetch := &fakeFetcher{media: Media{Data: []byte("OggS")}}
	a := NewLLMAdapter(ex, tr, fetch, nil)

	_, err := a.Extract(context.Background(), Input{Kind: constants.AUDIO, MediaURL: "https://x/a", ContentType: "audio/ogg"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "voice.ogg", tr.filename)
	assert.Equal(t, tr.text, ex.got.Text)
	assert.Equal(t, constants.AUDIO, ex.got.Kind)
}

func TestLLMAdapter_Failures(t *testing.T) {
	ctx := context.Background()

	a := NewLLMAdapter(&fakeExtractor{err: errors.New("timeout")}, nil, nil, nil)
	_, err := a.Extract(ctx, Input{Kind: constants.TEXT, Text: "x"}, nil)
	assert.ErrorIs(t, err, common.ErrUpstream)

	a = NewLLMAdapter(&fakeExtractor{}, nil, &fakeFetcher{err: common.ErrUpstream}, nil)
	_, err = a.Extract(ctx, Input{Kind: constants.IMAGE, MediaURL: "https://x/1"}, nil)
	assert.ErrorIs(t, err, common.ErrUpstream)

	a = NewLLMAdapter(&fakeExtractor{}, &fakeTranscriber{err: errors.New("bad audio")}, &fakeFetcher{media: Media{Data: []byte{1}}}, nil)
	_, err = a.Extract(ctx, Input{Kind: constants.AUDIO, MediaURL: "https://x/1"}, nil)
	assert.ErrorIs(t, err, common.ErrUpstream)

	a = NewLLMAdapter(&fakeExtractor{}, nil, &fakeFetcher{}, nil)
	_, err = a.Extract(ctx, Input{Kind: constants.AUDIO, MediaURL: "https://x/1"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	a = NewLLMAdapter(&fakeExtractor{}, nil, &fakeFetcher{}, nil)
	_, err = a.Extract(ctx, Input{Kind: constants.IMAGE}, nil)
	assert.ErrorIs(t, err, common.ErrNoInput)
}

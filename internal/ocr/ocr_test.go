package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	calls [][]string
	out   map[bool]string
	err   error
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if s.err != nil {
		return nil, &CommandError{Name: name, Stderr: "boom", Err: s.err}
	}
	tsv := args[len(args)-1] == "tsv"
	return []byte(s.out[tsv]), nil
}

func TestExtractImage_TextAndConfidence(t *testing.T) {
	r := &stubRunner{out: map[bool]string{
		false: "Ramesh\r\n10 kg chawal @ 50\n-----\n\n\n\n2  dz ande  ₹6\n",
		true:  "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n5\t1\t1\t1\t1\t1\t0\t0\t1\t1\t90\tRamesh\n5\t1\t1\t1\t1\t2\t0\t0\t1\t1\t70\t10\n",
	}}
	e := NewExtractor(Config{EnableTSVConfidence: true, PSM: 6}, nil, WithRunner(r))

	res, err := e.ExtractImage(context.Background(), []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Ramesh\n10 kg chawal @ 50\n\n2 dz ande ₹6", res.Text)
	assert.Greater(t, res.Confidence, float32(0.7))
	assert.LessOrEqual(t, res.Confidence, float32(1.0))

	require.Len(t, r.calls, 2)
	assert.Equal(t, "tesseract", r.calls[0][0])
	assert.True(t, strings.HasSuffix(r.calls[0][1], "note.jpg"))
	assert.Contains(t, r.calls[0], "--psm")
	assert.Equal(t, "tsv", r.calls[1][len(r.calls[1])-1])
}

func TestExtractImage_RunnerFailure(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&stubRunner{err: errors.New("not installed")}))
	res, err := e.ExtractImage(context.Background(), []byte{1}, "image/png")
	require.Error(t, err)
	assert.Equal(t, []string{"boom"}, res.Warnings)

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "tesseract", ce.Name)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := execRunner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	_, err := r.Run(context.Background(), "billbot-no-such-binary", "--version")

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "billbot-no-such-binary", ce.Name)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 10))
	assert.Equal(t, "...6789", tail("0123456789", 4))
}

func TestExtractImage_Empty(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&stubRunner{}))
	_, err := e.ExtractImage(context.Background(), nil, "image/png")
	assert.Error(t, err)
}

func TestNormalize_KeepsLeadingZeros(t *testing.T) {
	assert.Equal(t, "05 pc soap", Normalize("05  pc\tsoap  "))
	assert.Equal(t, "", Normalize(""))
}

func TestHeuristicConfidence(t *testing.T) {
	assert.InDelta(t, 0.2, heuristicConfidence("hello"), 0.001)
	assert.InDelta(t, 0.8, heuristicConfidence("Ramesh\n10 kg rice @ 50\nRs 500"), 0.001)
}

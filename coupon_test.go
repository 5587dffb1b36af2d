package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() formInput {
	return formInput{
		Recipient: "Anna",
		Reason:    "Geburtstag",
		Creator:   "Jonas",
		Width:     "200",
		Height:    "100",
		Amount:    "6",
		Scaling:   "0",
	}
}

func TestToBatch_Valid(t *testing.T) {
	in := validInput()
	in.Recipient = "  Anna  "
	in.Scaling = "3"

	batch, err := in.toBatch(newValidator())
	require.NoError(t, err)

	assert.Equal(t, CouponBatch{
		Recipient: "Anna",
		Reason:    "Geburtstag",
		Creator:   "Jonas",
		Width:     200,
		Height:    100,
		Amount:    6,
		Scaling:   3,
	}, batch)
}

func TestToBatch_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *formInput)
		err    error
	}{
		{"blank recipient", func(in *formInput) { in.Recipient = "" }, errBlankField},
		{"whitespace reason", func(in *formInput) { in.Reason = "   " }, errBlankField},
		{"blank creator", func(in *formInput) { in.Creator = "\t" }, errBlankField},
		{"blank width", func(in *formInput) { in.Width = "" }, errBlankField},
		{"blank amount", func(in *formInput) { in.Amount = " " }, errBlankField},
		{"blank wins over non-numeric", func(in *formInput) { in.Width = "abc"; in.Creator = "" }, errBlankField},
		{"non-numeric width", func(in *formInput) { in.Width = "abc" }, errNotNumeric},
		{"negative height", func(in *formInput) { in.Height = "-5" }, errNotNumeric},
		{"decimal amount", func(in *formInput) { in.Amount = "1.5" }, errNotNumeric},
		{"padded number", func(in *formInput) { in.Width = " 200" }, errNotNumeric},
		{"width too large", func(in *formInput) { in.Width = "401" }, errTooLarge},
		{"height too large", func(in *formInput) { in.Height = "701" }, errTooLarge},
		{"zero width", func(in *formInput) { in.Width = "0" }, errOutOfRange},
		{"zero amount", func(in *formInput) { in.Amount = "0" }, errOutOfRange},
		{"scaling too large", func(in *formInput) { in.Scaling = "6" }, errOutOfRange},
		{"amount overflows", func(in *formInput) { in.Amount = "99999999999999999999999" }, errOutOfRange},
		{"amount above limit", func(in *formInput) { in.Amount = "1001" }, errOutOfRange},
		{"width overflows", func(in *formInput) { in.Width = "99999999999999999999" }, errTooLarge},
		{"height overflows", func(in *formInput) { in.Height = "99999999999999999999" }, errTooLarge},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			_, err := in.toBatch(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestToBatch_Maxima(t *testing.T) {
	in := validInput()
	in.Width = "400"
	in.Height = "700"
	in.Amount = "1000"

	batch, err := in.toBatch(newValidator())
	require.NoError(t, err)
	assert.Equal(t, 400, batch.Width)
	assert.Equal(t, 700, batch.Height)
	assert.Equal(t, maxCouponAmount, batch.Amount)
}

func TestToBatch_OverflowShowsSizeMessage(t *testing.T) {
	in := validInput()
	in.Width = "99999999999999999999"

	_, err := in.toBatch(newValidator())
	require.Error(t, err)
	assert.Equal(t, "maximal erlaubte Maße: 400 x 700", userMessage(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "maximal erlaubte Maße: 400 x 700", userMessage(errTooLarge))
	assert.Equal(t, "Bitte fülle alle Felder korrekt aus!", userMessage(errBlankField))
	assert.Equal(t, "Bitte fülle alle Felder korrekt aus!", userMessage(errNotNumeric))
	assert.Equal(t, "Bitte fülle alle Felder korrekt aus!", userMessage(errOutOfRange))
}

func TestFontScale(t *testing.T) {
	for scaling := 0; scaling <= maxScaling; scaling++ {
		got := CouponBatch{Scaling: scaling}.FontScale()
		assert.InDelta(t, 1+0.1*float64(scaling), got, 1e-9)
	}
}

// fakeDialog answers Choose with fixed values.
type fakeDialog struct {
	path string
	ok   bool
}

func (d fakeDialog) Choose() (string, bool) {
	return d.path, d.ok
}

// fakeMailer records sent mails.
type fakeMailer struct {
	subjects    []string
	attachments []Attachment
	err         error
}

func (m *fakeMailer) Send(subject string, attachments ...Attachment) error {
	m.subjects = append(m.subjects, subject)
	m.attachments = append(m.attachments, attachments...)
	return m.err
}

func testBatch() CouponBatch {
	return CouponBatch{
		Recipient: "Anna",
		Reason:    "Geburtstag",
		Creator:   "Jonas",
		Width:     200,
		Height:    100,
		Amount:    6,
	}
}

func TestCouponService_Generate(t *testing.T) {
	dir := t.TempDir()
	svc := NewCouponService(dir, nil)

	path, err := svc.Generate(context.Background(), testBatch(), fakeDialog{path: "anna", ok: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "anna.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "expected PDF magic bytes")
}

func TestCouponService_GenerateCancelledDialog(t *testing.T) {
	dir := t.TempDir()
	svc := NewCouponService(dir, nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	path, err := svc.Generate(context.Background(), testBatch(), fakeDialog{})
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Gutscheine_GS-2026-10-"), path)
	assert.FileExists(t, path)
}

func TestCouponService_GenerateMails(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewCouponService(t.TempDir(), mailer)

	path, err := svc.Generate(context.Background(), testBatch(), fakeDialog{path: "mail.pdf", ok: true})
	require.NoError(t, err)

	require.Len(t, mailer.attachments, 1)
	assert.Equal(t, "mail.pdf", mailer.attachments[0].Filename)
	assert.Equal(t, []string{"Gutscheine für Anna"}, mailer.subjects)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, mailer.attachments[0].Data)
}

func TestCouponService_MailFailureKeepsFile(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewCouponService(t.TempDir(), mailer)

	path, err := svc.Generate(context.Background(), testBatch(), fakeDialog{path: "kept.pdf", ok: true})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestCouponService_WriteError(t *testing.T) {
	dir := t.TempDir()
	svc := NewCouponService(dir, nil)

	_, err := svc.Generate(context.Background(), testBatch(), fakeDialog{path: filepath.Join(dir, "missing", "x.pdf"), ok: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
}

func TestCouponService_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewCouponService(t.TempDir(), nil)
	_, err := svc.Generate(ctx, testBatch(), fakeDialog{})
	assert.ErrorIs(t, err, context.Canceled)
}

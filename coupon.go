package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// ---------------------------------------------------------------------------
// Coupon Batch
// ---------------------------------------------------------------------------

const (
	maxCouponWidth  = 400
	maxCouponHeight = 700
	maxCouponAmount = 1000
	maxScaling      = 5

	msgInvalidInput = "Bitte fülle alle Felder korrekt aus!"
)

var msgTooLarge = fmt.Sprintf("maximal erlaubte Maße: %d x %d", maxCouponWidth, maxCouponHeight)

// digitsRegex matches the accepted spelling of width, height, amount and scaling.
var digitsRegex = regexp.MustCompile(`^[0-9]+$`)

// CouponBatch is one generation request. It lives for a single submit.
type CouponBatch struct {
	Recipient string
	Reason    string
	Creator   string
	Width     int `validate:"min=1,max=400"`
	Height    int `validate:"min=1,max=700"`
	Amount    int `validate:"min=1,max=1000"`
	Scaling   int `validate:"min=0,max=5"`
}

// FontScale is the factor applied to every coupon font size.
func (b CouponBatch) FontScale() float64 {
	return 1 + 0.1*float64(b.Scaling)
}

// formInput is the raw content of the form as submitted.
type formInput struct {
	Recipient string `form:"recipient" validate:"required,notblank"`
	Reason    string `form:"reason" validate:"required,notblank"`
	Creator   string `form:"creator" validate:"required,notblank"`
	Width     string `form:"width" validate:"required,notblank,digits"`
	Height    string `form:"height" validate:"required,notblank,digits"`
	Amount    string `form:"amount" validate:"required,notblank,digits"`
	Scaling   string `form:"scaling" validate:"required,digits"`
	SaveAs    string `form:"save_as"`
}

// newValidator creates a validator with the custom "notblank" and "digits" rules.
func newValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return strings.TrimSpace(str) != ""
	})

	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return digitsRegex.MatchString(str)
	})

	return v
}

// classifyInputError maps validator errors to the sentinel errors. Blank
// fields win over malformed numbers.
func classifyInputError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	result := errOutOfRange
	for _, fe := range ve {
		switch fe.Tag() {
		case "required", "notblank":
			return fmt.Errorf("%w: %s", errBlankField, fe.Field())
		case "digits":
			result = fmt.Errorf("%w: %s", errNotNumeric, fe.Field())
		}
	}
	return result
}

// toBatch validates the form input and converts it into a CouponBatch.
func (in formInput) toBatch(v *validator.Validate) (CouponBatch, error) {
	if err := v.Struct(in); err != nil {
		return CouponBatch{}, classifyInputError(err)
	}

	nums := make([]int, 0, 4)
	for i, s := range []string{in.Width, in.Height, in.Amount, in.Scaling} {
		n, err := strconv.Atoi(s)
		if err != nil {
			// Digits that overflow int are an oversized width or height
			if i < 2 && errors.Is(err, strconv.ErrRange) {
				return CouponBatch{}, fmt.Errorf("%w: %v", errTooLarge, err)
			}
			return CouponBatch{}, fmt.Errorf("%w: %v", errOutOfRange, err)
		}
		nums = append(nums, n)
	}

	width, height := nums[0], nums[1]
	if width > maxCouponWidth || height > maxCouponHeight {
		return CouponBatch{}, fmt.Errorf("%w: %d x %d", errTooLarge, width, height)
	}

	batch := CouponBatch{
		Recipient: strings.TrimSpace(in.Recipient),
		Reason:    strings.TrimSpace(in.Reason),
		Creator:   strings.TrimSpace(in.Creator),
		Width:     width,
		Height:    height,
		Amount:    nums[2],
		Scaling:   nums[3],
	}
	if err := v.Struct(batch); err != nil {
		return CouponBatch{}, fmt.Errorf("%w: %v", errOutOfRange, err)
	}

	return batch, nil
}

// userMessage returns the text shown to the user for a rejected submit.
func userMessage(err error) string {
	if errors.Is(err, errTooLarge) {
		return msgTooLarge
	}
	return msgInvalidInput
}

// ---------------------------------------------------------------------------
// Coupon Service
// ---------------------------------------------------------------------------

// SaveDialog asks the user where a document should be written.
// ok is false when the dialog was cancelled.
type SaveDialog interface {
	Choose() (path string, ok bool)
}

// mailSender delivers generated documents.
type mailSender interface {
	Send(subject string, attachments ...Attachment) error
}

// CouponService renders coupon batches and writes them to disk.
type CouponService struct {
	outputDir string
	mailer    mailSender
	now       func() time.Time
}

// NewCouponService creates a service writing to outputDir. mailer may be nil.
func NewCouponService(outputDir string, mailer mailSender) *CouponService {
	return &CouponService{outputDir: outputDir, mailer: mailer, now: time.Now}
}

// Generate renders batch, asks dialog for the target and writes the PDF.
// It returns the path that was written.
func (s *CouponService) Generate(ctx context.Context, batch CouponBatch, dialog SaveDialog) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, sheet, err := createCouponPDF(batch)
	if err != nil {
		return "", fmt.Errorf("failed to create coupon pdf: %w", err)
	}

	chosen, ok := dialog.Choose()
	path := resolveSavePath(chosen, ok, s.outputDir, s.now())

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().
		Str("recipient", batch.Recipient).
		Int("amount", batch.Amount).
		Int("columns", sheet.Columns).
		Int("pages", sheet.Pages).
		Str("path", path).
		Msg("coupons written")

	if s.mailer != nil {
		subject := fmt.Sprintf("Gutscheine für %s", batch.Recipient)
		if err := s.mailer.Send(subject, Attachment{Filename: filepath.Base(path), Data: data}); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to mail coupons")
		}
	}

	return path, nil
}

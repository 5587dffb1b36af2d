package main

import (
	"bytes"
	"context"
	"html/template"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ---------------------------------------------------------------------------
// Form
// ---------------------------------------------------------------------------

// CouponGenerator is implemented by CouponService.
type CouponGenerator interface {
	Generate(ctx context.Context, batch CouponBatch, dialog SaveDialog) (string, error)
}

// fieldDialog answers the save dialog with the "Speichern unter" form field.
type fieldDialog string

func (d fieldDialog) Choose() (string, bool) {
	return string(d), d != ""
}

// FormHandler serves the coupon form and handles submits.
type FormHandler struct {
	generator CouponGenerator
	validator *validator.Validate
	layout    formLayout
	backdrop  []byte
}

// NewFormHandler creates a FormHandler. backdrop is the PNG painted behind the inputs.
func NewFormHandler(g CouponGenerator, v *validator.Validate, layout formLayout, backdrop []byte) *FormHandler {
	return &FormHandler{generator: g, validator: v, layout: layout, backdrop: backdrop}
}

// Register mounts the form routes on app.
func (h *FormHandler) Register(app *fiber.App) {
	app.Get("/", h.Show)
	app.Get("/backdrop.png", h.Backdrop)
	app.Post("/generate", sameOrigin, h.Generate)
}

// sameOrigin rejects submits that another site's page sent to the form.
// Requests without Origin and Sec-Fetch-Site headers are let through.
func sameOrigin(c *fiber.Ctx) error {
	switch site := c.Get("Sec-Fetch-Site"); site {
	case "", "same-origin", "none":
	default:
		log.Warn().Str("sec_fetch_site", site).Msg("cross-site submit rejected")
		return c.Status(fiber.StatusForbidden).SendString("forbidden")
	}

	if origin := c.Get(fiber.HeaderOrigin); origin != "" {
		u, err := url.Parse(origin)
		if err != nil || u.Host != string(c.Request().Host()) {
			log.Warn().Str("origin", origin).Msg("cross-origin submit rejected")
			return c.Status(fiber.StatusForbidden).SendString("forbidden")
		}
	}

	return c.Next()
}

// formView is the data rendered into formTemplate.
type formView struct {
	Title    string
	Width    int
	Height   int
	Fields   map[string]rect
	Scales   []int
	Input    formInput
	Selected int
	Message  string
	IsError  bool
}

func (h *FormHandler) view(in formInput) formView {
	fields := make(map[string]rect)
	for _, f := range h.layout.fields() {
		fields[f.Name] = f.rect
	}

	scales := make([]int, 0, maxScaling+1)
	for i := 0; i <= maxScaling; i++ {
		scales = append(scales, i)
	}

	selected, _ := strconv.Atoi(in.Scaling)

	return formView{
		Title:    windowTitle,
		Width:    windowWidth,
		Height:   windowHeight,
		Fields:   fields,
		Scales:   scales,
		Input:    in,
		Selected: selected,
	}
}

func (h *FormHandler) render(c *fiber.Ctx, status int, v formView) error {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, v); err != nil {
		log.Error().Err(err).Msg("failed to render form")
		return c.Status(fiber.StatusInternalServerError).SendString("internal server error")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// Show handles GET / and renders the empty form.
func (h *FormHandler) Show(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, h.view(formInput{Scaling: "0"}))
}

// Backdrop handles GET /backdrop.png.
func (h *FormHandler) Backdrop(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(h.backdrop)
}

// Generate handles POST /generate: validates the form, generates the coupons
// and reports the outcome in a dialog above the form.
func (h *FormHandler) Generate(c *fiber.Ctx) error {
	var in formInput
	if err := c.BodyParser(&in); err != nil {
		v := h.view(in)
		v.Message, v.IsError = msgInvalidInput, true
		return h.render(c, fiber.StatusBadRequest, v)
	}

	v := h.view(in)

	batch, err := in.toBatch(h.validator)
	if err != nil {
		log.Debug().Err(err).Msg("coupon form rejected")
		v.Message, v.IsError = userMessage(err), true
		return h.render(c, fiber.StatusBadRequest, v)
	}
	path, err := h.generator.Generate(c.UserContext(), batch, fieldDialog(in.SaveAs))
	if err != nil {
		log.Error().Err(err).Str("recipient", batch.Recipient).Msg("failed to generate coupons")
		v.Message, v.IsError = "PDF konnte nicht erstellt werden.", true
		return h.render(c, fiber.StatusInternalServerError, v)
	}

	v.Message = "Gutscheine gespeichert unter " + path
	return h.render(c, fiber.StatusOK, v)
}

var formTemplate = template.Must(template.New("form").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Arial, sans-serif; }
#window { position: relative; width: {{.Width}}px; height: {{.Height}}px; background: url("/backdrop.png") no-repeat; }
#window input, #window select, #window button { position: absolute; box-sizing: border-box; font-size: 16px; }
#window button, #window select { font-family: Arial, sans-serif; }
#window button { background: #000; color: #fff; border: none; }
#window select { background: #c0c0c0; color: #000; }
#save { margin-top: 8px; width: {{.Width}}px; }
dialog { font-size: 16px; }
</style>
</head>
<body>
{{if .Message}}<dialog open class="{{if .IsError}}error{{else}}info{{end}}">
<p>{{if .IsError}}Fehler: {{end}}{{.Message}}</p>
<form method="dialog"><button>OK</button></form>
</dialog>{{end}}
<form method="post" action="/generate">
<div id="window">
{{with index .Fields "recipient"}}<input type="text" name="recipient" value="{{$.Input.Recipient}}" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">{{end}}
{{with index .Fields "reason"}}<input type="text" name="reason" value="{{$.Input.Reason}}" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">{{end}}
{{with index .Fields "creator"}}<input type="text" name="creator" value="{{$.Input.Creator}}" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">{{end}}
{{with index .Fields "width"}}<input type="text" name="width" value="{{$.Input.Width}}" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">{{end}}
{{with index .Fields "height"}}<input type="text" name="height" value="{{$.Input.Height}}" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">{{end}}
{{with index .Fields "amount"}}<input type="text" name="amount" value="{{$.Input.Amount}}" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">{{end}}
{{with index .Fields "scaling"}}<select name="scaling" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">
{{range $.Scales}}<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{inc .}}</option>
{{end}}</select>{{end}}
{{with index .Fields "generate"}}<button type="submit" style="left:{{.X}}px;top:{{.Y}}px;width:{{.W}}px;height:{{.H}}px">PDF generieren</button>{{end}}
</div>
<div id="save"><label>Speichern unter... <input type="text" name="save_as" value="{{.Input.SaveAs}}" placeholder="Gutscheine.pdf"></label></div>
</form>
</body>
</html>
`))

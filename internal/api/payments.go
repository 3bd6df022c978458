package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/bizdesk/pkg/media"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
	"github.com/dmitrymomot/bizdesk/pkg/validator"
)

const (
	multipartMemory   = 1 << 20
	multipartOverhead = 64 << 10
	screenshotField   = "screenshot"
)

type paymentView struct {
	payment.Request
	ScreenshotURL string `json:"screenshot_url,omitempty"`
}

func (a *api) paymentView(req payment.Request) paymentView {
	v := paymentView{Request: req}
	if a.ScreenshotURL != nil && req.ScreenshotRef != "" {
		v.ScreenshotURL = a.ScreenshotURL(req.ScreenshotRef)
	}
	return v
}

func (a *api) paymentViews(reqs []payment.Request) []paymentView {
	views := make([]paymentView, 0, len(reqs))
	for _, req := range reqs {
		views = append(views, a.paymentView(req))
	}
	return views
}

type submitPaymentRequest struct {
	SenderName    string `json:"sender_name"`
	AmountPaid    string `json:"amount_paid"`
	Plan          string `json:"plan"`
	Comment       string `json:"comment"`
	ScreenshotRef string `json:"screenshot_ref"`
}

// submitPayment accepts multipart/form-data with an optional screenshot file, or JSON
// referencing a screenshot that was uploaded elsewhere.
func (a *api) submitPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())

	var (
		body       submitPaymentRequest
		attachment *payment.Attachment
	)
	if render.GetRequestContentType(r) == render.ContentTypeJSON {
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			a.errs.respond(w, r, errors.Join(errBadRequest, err))
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadSize+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				a.errs.respond(w, r, media.ErrFileTooLarge)
				return
			}
			a.errs.respond(w, r, errors.Join(errBadRequest, err))
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		body = submitPaymentRequest{
			SenderName: r.FormValue("sender_name"),
			AmountPaid: r.FormValue("amount_paid"),
			Plan:       r.FormValue("plan"),
			Comment:    r.FormValue("comment"),
		}

		file, header, err := r.FormFile(screenshotField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			a.errs.respond(w, r, errors.Join(errBadRequest, err))
			return
		default:
			defer file.Close()
			attachment = &payment.Attachment{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        file,
			}
		}
	}

	amount, err := decimal.NewFromString(body.AmountPaid)
	if err != nil {
		a.errs.respond(w, r, errors.Join(payment.ErrInvalidRequest, validator.ValidationErrors{
			{Field: "amount_paid", Message: "must be a decimal number"},
		}))
		return
	}

	req, err := a.Ledger.Submit(r.Context(), payment.SubmitParams{
		AccountID:     p.AccountID(),
		SubmittedBy:   p.ID(),
		SenderName:    body.SenderName,
		AmountPaid:    amount,
		Comment:       body.Comment,
		Plan:          parsePlan(body.Plan),
		ScreenshotRef: body.ScreenshotRef,
		Screenshot:    attachment,
	})
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, a.paymentView(*req))
}

// parsePlan accepts any casing of a plan name. Unknown names pass through
// unchanged so the ledger reports them with the other field errors.
func parsePlan(s string) subscription.Plan {
	if plan, err := subscription.ParsePlan(s); err == nil {
		return plan
	}
	return subscription.Plan(strings.TrimSpace(s))
}

func (a *api) listPayments(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	reqs, err := a.Ledger.ListByAccount(r.Context(), p.AccountID())
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, a.paymentViews(reqs))
}

// getPayment hides other accounts' requests behind 404 unless the caller reviews payments.
func (a *api) getPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requestID(w, r)
	if !ok {
		return
	}
	p, _ := principal.FromContext(r.Context())

	req, err := a.Ledger.Get(r.Context(), id)
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	if req.AccountID != p.AccountID() && a.Gate.Authorize(r.Context(), p, CapPaymentsDecide) != nil {
		a.errs.respond(w, r, payment.ErrRequestNotFound)
		return
	}
	respond(w, r, http.StatusOK, a.paymentView(*req))
}

func (a *api) listPending(w http.ResponseWriter, r *http.Request) {
	reqs, err := a.Ledger.ListPending(r.Context())
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, a.paymentViews(reqs))
}

type decisionRequest struct {
	Decision     string `json:"decision"`
	AdminComment string `json:"admin_comment"`
}

func (a *api) decidePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := a.requestID(w, r)
	if !ok {
		return
	}
	var body decisionRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		a.errs.respond(w, r, errors.Join(errBadRequest, err))
		return
	}
	p, _ := principal.FromContext(r.Context())
	decision, _ := payment.ParseDecision(body.Decision)

	req, err := a.Ledger.Decide(r.Context(), payment.DecideParams{
		RequestID:    id,
		Decision:     decision,
		AdminComment: body.AdminComment,
		DecidedBy:    p.ID(),
	})
	if err != nil {
		a.errs.respond(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, a.paymentView(*req))
}

func (a *api) requestID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.errs.respond(w, r, errors.Join(payment.ErrInvalidRequest, validator.ValidationErrors{
			{Field: "id", Message: "must be a valid UUID"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

package checkout

import (
	"errors"
	"net/http"

	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/i18n"
	"github.com/genzzone/storefront/internal/validation"
)

// UserMessage renders a submission error for the customer. Server-provided
// text wins over the generic fallback; network failures get their own text.
func UserMessage(err error, p *message.Printer) string {
	if err == nil {
		return ""
	}

	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}
	if errors.Is(err, ErrSubmissionInProgress) {
		return p.Sprintf(i18n.MsgBusy)
	}
	if errors.Is(err, ErrAlreadySubmitted) {
		return p.Sprintf(i18n.MsgAlreadySubmitted)
	}

	var serr *domain.ServerError
	if errors.As(err, &serr) {
		msg := serr.Display()
		if msg == "" {
			msg = p.Sprintf(i18n.MsgSubmitFailed)
		}
		if serr.Status == http.StatusForbidden {
			msg += p.Sprintf(i18n.MsgForbiddenHint)
		}
		return msg
	}

	if errors.Is(err, domain.ErrTransport) {
		return p.Sprintf(i18n.MsgNetwork)
	}
	return p.Sprintf(i18n.MsgSubmitFailed)
}

package processor

import (
	"net/mail"

	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/model"
	"github.com/sells-group/directory-cli/internal/normalize"
)

// ValidateEmails attempts an RFC-compliant parse of each record's email.
// On success the email is replaced with its normalized canonical form and
// marked validated; on failure the field is cleared and left unvalidated.
// Records are never dropped here. Runs after deduplication so each surviving
// record is validated once.
func ValidateEmails(records []*model.Business) []*model.Business {
	var validated int

	for _, b := range records {
		if b.Email == "" {
			continue
		}

		cleaned := normalize.Email(b.Email)
		addr, err := mail.ParseAddress(cleaned)
		if err != nil || addr.Name != "" {
			zap.L().Debug("processor: invalid email",
				zap.String("name", b.Name),
				zap.String("email", b.Email),
			)
			b.Email = ""
			b.EmailValidated = false
			continue
		}

		b.Email = addr.Address
		b.EmailValidated = true
		validated++
	}

	zap.L().Info("processor: email validation complete", zap.Int("validated", validated))
	return records
}

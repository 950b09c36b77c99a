package checkout

import (
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	PaymentCard          = "card"
	PaymentCash          = "cash"
	PaymentBankTransfer  = "bank-transfer"
	PaymentDigitalWallet = "digital-wallet"
)

var paymentAliases = map[string]string{
	"tarjeta":       PaymentCard,
	"efectivo":      PaymentCash,
	"transferencia": PaymentBankTransfer,
	"mercadopago":   PaymentDigitalWallet,
}

var (
	nameRe   = regexp.MustCompile(`^[A-Za-zÀ-ÿ' -]{2,40}$`)
	cityRe   = regexp.MustCompile(`^[A-Za-zÀ-ÿ' .-]{2,50}$`)
	postalRe = regexp.MustCompile(`^[A-Za-z0-9 -]{3,10}$`)
)

const minAddressLen = 6

// Form contient les champs de livraison et de paiement saisis au checkout.
type Form struct {
	FirstName     string `json:"first_name" validate:"required,personname"`
	LastName      string `json:"last_name" validate:"required,personname"`
	Address       string `json:"address" validate:"required,streetaddress"`
	City          string `json:"city" validate:"required,cityname"`
	PostalCode    string `json:"postal_code" validate:"required,postalcode"`
	PaymentMethod string `json:"payment_method" validate:"required,paymentmethod"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
}

// Normalize supprime les espaces autour des champs et traduit les moyens de
// paiement saisis en espagnol.
func (f Form) Normalize() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.PostalCode = strings.TrimSpace(f.PostalCode)
	f.Email = strings.TrimSpace(f.Email)
	pm := strings.ToLower(strings.TrimSpace(f.PaymentMethod))
	if canonical, ok := paymentAliases[pm]; ok {
		pm = canonical
	}
	f.PaymentMethod = pm
	return f
}

func (f Form) FullName() string {
	return f.FirstName + " " + f.LastName
}

// ValidationError liste les champs refusés (nom JSON → message).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "champs invalides: " + strings.Join(names, ", ")
}

var messages = map[string]string{
	"first_name":     "Ingresá un nombre válido (2-40 letras).",
	"last_name":      "Ingresá un apellido válido (2-40 letras).",
	"address":        "Dirección demasiado corta.",
	"city":           "Ingresá una ciudad válida.",
	"postal_code":    "Código postal inválido.",
	"payment_method": "Elegí un método de pago.",
	"email":          "Email inválido.",
}

const requiredMessage = "Campo obligatorio."

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "personname", func(fl validator.FieldLevel) bool {
		return nameRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "cityname", func(fl validator.FieldLevel) bool {
		return cityRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "postalcode", func(fl validator.FieldLevel) bool {
		return postalRe.MatchString(fl.Field().String())
	})
	mustRegister(v, "streetaddress", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= minAddressLen
	})
	mustRegister(v, "paymentmethod", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case PaymentCard, PaymentCash, PaymentBankTransfer, PaymentDigitalWallet:
			return true
		}
		return false
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

var validate = newValidator()

// Validate vérifie tous les champs d'un coup. Le formulaire doit déjà être
// normalisé.
func Validate(f Form) *ValidationError {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: map[string]string{"form": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := messages[fe.Field()]
		if fe.Tag() == "required" {
			msg = requiredMessage
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

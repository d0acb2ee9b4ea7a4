// Package wizard implements the two-step registration flow: identity
// creation first, profile collection second. The current step is an
// explicit state value, not something inferred from what happens to be
// rendered.
package wizard

import (
	"context"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/auth-bridge/internal/bridge"
	"github.com/openkcm/auth-bridge/internal/registration"
)

type Step int

const (
	StepCredentials Step = iota
	StepProfile
)

func (s Step) String() string {
	switch s {
	case StepCredentials:
		return "credentials"
	case StepProfile:
		return "profile"
	default:
		return "unknown"
	}
}

const (
	AccountTypeIndividual   = "individual"
	AccountTypeProfessional = "professional"
)

// Bridge is the slice of the auth session bridge the wizard needs.
type Bridge interface {
	SignUp(ctx context.Context, email, password string) (bridge.Result, error)
	IDToken(ctx context.Context, forceRefresh bool) (string, error)
}

// Registrar submits the completed profile. *registration.Client
// implements it.
type Registrar interface {
	Register(ctx context.Context, idToken string, profile registration.Profile) error
}

type Credentials struct {
	Email           string
	Password        string
	ConfirmPassword string
}

type Profile struct {
	FullName    string
	BirthDate   string
	CPF         string
	Phone       string
	AccountType string

	ProfessionalKind   string
	RegistrationNumber string
	RegistrationIssuer string
	RegistrationState  string
}

// Outcome is what one submission attempt produced. FieldErrors are
// scoped to form fields; Alert goes to the page-level alert region.
type Outcome struct {
	OK          bool
	Busy        bool
	Alert       string
	FieldErrors map[string]string
	RedirectTo  string
}

type Wizard struct {
	auth       Bridge
	registrar  Registrar
	redirectTo string

	step        Step
	email       string
	created     bool
	done        bool
	inFlight    bool
	fieldErrors map[string]string
}

func New(auth Bridge, registrar Registrar, redirectTo string) *Wizard {
	return &Wizard{
		auth:        auth,
		registrar:   registrar,
		redirectTo:  redirectTo,
		step:        StepCredentials,
		fieldErrors: map[string]string{},
	}
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) Done() bool { return w.done }

// FieldErrors returns the per-field messages of the last attempt.
func (w *Wizard) FieldErrors() map[string]string { return w.fieldErrors }

// Back returns to the credentials step. The identity created in step 1
// is kept; only the step changes.
func (w *Wizard) Back() {
	if w.done {
		return
	}

	w.clearErrors()
	w.step = StepCredentials
}

func (w *Wizard) clearErrors() {
	w.fieldErrors = map[string]string{}
}

// SubmitCredentials validates the credentials form and creates the
// provider identity. Validation failures never reach the network. A
// resubmission after Back reuses the identity already created.
func (w *Wizard) SubmitCredentials(ctx context.Context, creds Credentials) Outcome {
	if w.inFlight {
		return Outcome{Busy: true}
	}

	w.clearErrors()

	if creds.Email == "" {
		w.fieldErrors["email"] = "E-mail é obrigatório"
	}
	if len(creds.Password) < 6 {
		w.fieldErrors["password"] = "Senha deve ter pelo menos 6 caracteres"
	}
	if creds.Password != creds.ConfirmPassword {
		w.fieldErrors["confirmPassword"] = "Senhas não conferem"
	}

	if len(w.fieldErrors) > 0 {
		return Outcome{FieldErrors: w.fieldErrors}
	}

	if w.created && w.email == creds.Email {
		slogctx.Debug(ctx, "Identity already created, skipping account creation")
		w.step = StepProfile

		return Outcome{OK: true, Alert: "Autenticação bem-sucedida! Complete seu perfil."}
	}

	w.inFlight = true
	defer func() { w.inFlight = false }()

	result, err := w.auth.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return Outcome{Alert: err.Error()}
	}
	if !result.Success {
		return Outcome{Alert: result.Error}
	}

	w.email = creds.Email
	w.created = true
	w.step = StepProfile

	return Outcome{OK: true, Alert: "Autenticação bem-sucedida! Complete seu perfil."}
}

// SubmitProfile validates the profile form and submits it with a fresh
// identity token. A rejected submission keeps the wizard on the
// profile step so the user can retry; success is terminal.
func (w *Wizard) SubmitProfile(ctx context.Context, profile Profile) Outcome {
	if w.inFlight {
		return Outcome{Busy: true}
	}
	if w.step != StepProfile {
		return Outcome{Alert: "Complete a autenticação primeiro"}
	}

	w.clearErrors()

	if profile.FullName == "" {
		w.fieldErrors["fullName"] = "Nome é obrigatório"
	}
	if profile.BirthDate == "" {
		w.fieldErrors["birthDate"] = "Data de nascimento é obrigatória"
	}
	if profile.CPF == "" {
		w.fieldErrors["cpf"] = "CPF é obrigatório"
	}
	if profile.Phone == "" {
		w.fieldErrors["phone"] = "Telefone é obrigatório"
	}
	if profile.AccountType == "" {
		w.fieldErrors["accountType"] = "Tipo de conta é obrigatório"
	}

	if profile.AccountType == AccountTypeProfessional {
		if profile.ProfessionalKind == "" {
			w.fieldErrors["professionalKind"] = "Tipo de profissional é obrigatório"
		}
		if profile.RegistrationNumber == "" {
			w.fieldErrors["registrationNumber"] = "Número de registro é obrigatório"
		}
		if profile.RegistrationIssuer == "" {
			w.fieldErrors["registrationIssuer"] = "Órgão emissor é obrigatório"
		}
	}

	if len(w.fieldErrors) > 0 {
		return Outcome{FieldErrors: w.fieldErrors}
	}

	w.inFlight = true
	defer func() { w.inFlight = false }()

	token, err := w.auth.IDToken(ctx, false)
	if err != nil {
		return Outcome{Alert: err.Error()}
	}
	if token == "" {
		slogctx.Error(ctx, "No identity token available for registration")
		return Outcome{Alert: "Erro ao registrar"}
	}

	payload := registration.Profile{
		Email:        w.email,
		FullName:     profile.FullName,
		BirthDate:    profile.BirthDate,
		CPF:          profile.CPF,
		Phone:        profile.Phone,
		AccountType:  profile.AccountType,
		Professional: professionalPayload(profile),
	}

	if err := w.registrar.Register(ctx, token, payload); err != nil {
		slogctx.Warn(ctx, "Registration rejected", "error", err)
		return Outcome{Alert: err.Error()}
	}

	w.done = true

	return Outcome{
		OK:         true,
		Alert:      "Conta criada com sucesso! Redirecionando...",
		RedirectTo: w.redirectTo,
	}
}

// professionalPayload builds the nested professional object, present
// only for professional accounts, with the optional registration state
// as an explicit null when left empty.
func professionalPayload(profile Profile) *registration.Professional {
	if profile.AccountType != AccountTypeProfessional {
		return nil
	}

	var state *string
	if profile.RegistrationState != "" {
		state = &profile.RegistrationState
	}

	return &registration.Professional{
		Kind:               profile.ProfessionalKind,
		RegistrationNumber: profile.RegistrationNumber,
		RegistrationIssuer: profile.RegistrationIssuer,
		RegistrationState:  state,
	}
}

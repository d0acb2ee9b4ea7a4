// Package usermsg translates provider error codes into the localized,
// user-facing messages shown in forms and alerts.
package usermsg

import "github.com/openkcm/auth-bridge/internal/idp"

const Unknown = "Erro desconhecido"

// ForCode returns the localized message for a provider error code. It
// is total over idp.Code: unknown codes fall back to a generic message.
func ForCode(code idp.Code) string {
	switch code {
	case idp.CodeEmailExists:
		return "Este e-mail já está em uso"
	case idp.CodeInvalidEmail:
		return "E-mail inválido"
	case idp.CodeOperationNotAllowed:
		return "Operação não permitida"
	case idp.CodeWeakPassword:
		return "Senha muito fraca. Use pelo menos 6 caracteres"
	case idp.CodeUserDisabled:
		return "Esta conta foi desabilitada"
	case idp.CodeUserNotFound:
		return "Usuário não encontrado"
	case idp.CodeWrongPassword, idp.CodeInvalidCredentials:
		return "Senha incorreta"
	case idp.CodeTooManyAttempts:
		return "Muitas tentativas. Tente novamente mais tarde"
	case idp.CodeNetwork:
		return "Erro de conexão. Verifique sua internet"
	default:
		return Unknown
	}
}

// ForError translates any error that may carry a provider code. Errors
// without a code keep their own message so callers always have
// something to show.
func ForError(err error) string {
	if err == nil {
		return ""
	}

	if perr, ok := idp.AsError(err); ok {
		return ForCode(perr.Code)
	}

	if err.Error() != "" {
		return err.Error()
	}

	return Unknown
}

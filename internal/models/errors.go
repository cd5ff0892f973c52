package model

import (
	"errors"
	"net/http"
)

// Erreurs métier sentinelles. Les services les renvoient (éventuellement
// enveloppées avec %w), les handlers les traduisent en code API + statut HTTP
// via ErrorCode / ErrorStatus.

var (
	// Entraide
	ErrPackageNotFound  = errors.New("package not found")
	ErrPackageNotActive = errors.New("package not claimable")
	ErrPackageFull      = errors.New("package already full")
	ErrAlreadyHelped    = errors.New("package already helped by this user")
	ErrSelfHelp         = errors.New("cannot help own package")
	ErrHelperNotFound   = errors.New("helper not found")

	// Publication
	ErrInsufficientCredit = errors.New("credit score too low to publish")
	ErrQuotaExceeded      = errors.New("daily publish quota exhausted")
	ErrHelpTaskIncomplete = errors.New("daily help task incomplete")
	ErrDuplicateGift      = errors.New("gift already published")
	ErrInvalidLink        = errors.New("invalid gift link")

	// Gestion de paquet
	ErrForbidden          = errors.New("not allowed to manage this package")
	ErrAlreadyCompleted   = errors.New("completed package cannot be cancelled")
	ErrCountNotIncreasing = errors.New("new help count must exceed current count")
	ErrCountExceedsMax    = errors.New("help count cannot exceed max help")

	// Contrat
	ErrContractDisabled  = errors.New("contract not enabled on this package")
	ErrContractFulfilled = errors.New("contract already fulfilled")

	// Divers
	ErrUserNotFound   = errors.New("user not found")
	ErrUnknownReason  = errors.New("unknown credit reason code")
	ErrStoreConflict  = errors.New("concurrent update conflict") // corrections trop disputées, à retenter
	ErrInvalidSession = errors.New("session not found or expired")
)

// ErrorCode code API stable associé à une erreur métier
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrPackageNotFound), errors.Is(err, ErrUserNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrPackageNotActive):
		return "NOT_ACTIVE"
	case errors.Is(err, ErrPackageFull):
		return "FULL"
	case errors.Is(err, ErrAlreadyHelped):
		return "ALREADY_HELPED"
	case errors.Is(err, ErrSelfHelp):
		return "SELF_HELP"
	case errors.Is(err, ErrHelperNotFound):
		return "HELPER_NOT_FOUND"
	case errors.Is(err, ErrInsufficientCredit):
		return "INSUFFICIENT_CREDIT"
	case errors.Is(err, ErrQuotaExceeded):
		return "QUOTA_EXCEEDED"
	case errors.Is(err, ErrHelpTaskIncomplete):
		return "HELP_TASK_INCOMPLETE"
	case errors.Is(err, ErrDuplicateGift):
		return "DUPLICATE_GIFT"
	case errors.Is(err, ErrInvalidLink):
		return "INVALID_LINK"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrAlreadyCompleted):
		return "ALREADY_COMPLETED"
	case errors.Is(err, ErrCountNotIncreasing):
		return "COUNT_NOT_INCREASING"
	case errors.Is(err, ErrCountExceedsMax):
		return "COUNT_EXCEEDS_MAX"
	case errors.Is(err, ErrStoreConflict):
		return "CONFLICT"
	case errors.Is(err, ErrContractDisabled):
		return "CONTRACT_DISABLED"
	case errors.Is(err, ErrContractFulfilled):
		return "CONTRACT_FULFILLED"
	case errors.Is(err, ErrUnknownReason):
		return "UNKNOWN_REASON"
	case errors.Is(err, ErrInvalidSession):
		return "UNAUTHORIZED"
	default:
		return "INTERNAL"
	}
}

// ErrorStatus statut HTTP associé à une erreur métier
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrPackageNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPackageFull), errors.Is(err, ErrAlreadyHelped),
		errors.Is(err, ErrPackageNotActive), errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrStoreConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInsufficientCredit),
		errors.Is(err, ErrQuotaExceeded), errors.Is(err, ErrHelpTaskIncomplete):
		return http.StatusForbidden
	case errors.Is(err, ErrHelperNotFound), errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, ErrSelfHelp), errors.Is(err, ErrDuplicateGift),
		errors.Is(err, ErrInvalidLink), errors.Is(err, ErrCountNotIncreasing),
		errors.Is(err, ErrCountExceedsMax), errors.Is(err, ErrContractDisabled),
		errors.Is(err, ErrContractFulfilled), errors.Is(err, ErrUnknownReason):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package i18n

import (
	"github.com/wms-platform/handy-terminal/pkg/errors"
)

// Locale selects a message catalog
type Locale string

const (
	LocaleJA Locale = "ja"
	LocaleEN Locale = "en"
)

// Catalog holds every operator-facing string
type Catalog struct {
	Unauthorized string
	Forbidden    string
	NotFound     string
	Validation   string
	Network      string
	Server       string
	Unknown      string

	Submitted                string
	Updated                  string
	Cancelled                string
	QuantityExceedsRemaining string
	InvalidDate              string
	WarehouseMissing         string
	WarehouseMissingShort    string
	PickerMissing            string

	Fallback Fallbacks
}

// Fallbacks are shown when a failed backend response carries no message
type Fallbacks struct {
	Warehouses   string
	Schedules    string
	Schedule     string
	WorkItems    string
	StartWork    string
	UpdateWork   string
	CompleteWork string
	CancelWork   string
	Locations    string
	PickingTasks string
}

var japanese = Catalog{
	Unauthorized: "認証エラー。再ログインしてください。",
	Forbidden:    "アクセス権限がありません。",
	NotFound:     "データが見つかりません。",
	Validation:   "入力エラーです。",
	Network:      "ネットワークエラー。接続を確認してください。",
	Server:       "サーバーエラー。しばらくしてから再度お試しください。",
	Unknown:      "エラーが発生しました。",

	Submitted:                "入庫を確定しました",
	Updated:                  "更新しました",
	Cancelled:                "作業をキャンセルしました",
	QuantityExceedsRemaining: "入庫数量が残数を超えています",
	InvalidDate:              "賞味期限の日付が正しくありません",
	WarehouseMissing:         "倉庫情報が見つかりません。再ログインしてください。",
	WarehouseMissingShort:    "倉庫情報が見つかりません",
	PickerMissing:            "ピッカー情報が見つかりません",

	Fallback: Fallbacks{
		Warehouses:   "倉庫一覧の取得に失敗しました",
		Schedules:    "入庫予定の取得に失敗しました",
		Schedule:     "入庫予定の取得に失敗しました",
		WorkItems:    "作業データの取得に失敗しました",
		StartWork:    "作業の開始に失敗しました",
		UpdateWork:   "作業データの更新に失敗しました",
		CompleteWork: "入庫確定に失敗しました",
		CancelWork:   "作業のキャンセルに失敗しました",
		Locations:    "ロケーションの取得に失敗しました",
		PickingTasks: "ピッキングタスクの取得に失敗しました",
	},
}

var english = Catalog{
	Unauthorized: "Authentication failed. Please sign in again.",
	Forbidden:    "You do not have permission for this action.",
	NotFound:     "The data could not be found.",
	Validation:   "Invalid input.",
	Network:      "Network error. Check your connection.",
	Server:       "Server error. Please try again later.",
	Unknown:      "An error occurred.",

	Submitted:                "Receipt confirmed",
	Updated:                  "Updated",
	Cancelled:                "Work cancelled",
	QuantityExceedsRemaining: "Quantity exceeds the remaining quantity",
	InvalidDate:              "Expiration date is not a valid date",
	WarehouseMissing:         "Warehouse not found. Please sign in again.",
	WarehouseMissingShort:    "Warehouse not found",
	PickerMissing:            "Picker not found",

	Fallback: Fallbacks{
		Warehouses:   "Failed to load warehouses",
		Schedules:    "Failed to load incoming schedules",
		Schedule:     "Failed to load the incoming schedule",
		WorkItems:    "Failed to load work items",
		StartWork:    "Failed to start work",
		UpdateWork:   "Failed to update work",
		CompleteWork: "Failed to confirm the receipt",
		CancelWork:   "Failed to cancel work",
		Locations:    "Failed to load locations",
		PickingTasks: "Failed to load picking tasks",
	},
}

// For returns the catalog for locale, Japanese when unknown
func For(locale Locale) *Catalog {
	if locale == LocaleEN {
		c := english
		return &c
	}
	c := japanese
	return &c
}

// FailureMessage maps a gateway failure to the message shown to the operator.
// Validation failures pass the server's text through; anything outside the
// taxonomy shows its own message.
func (c *Catalog) FailureMessage(err error) string {
	if err == nil {
		return ""
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return c.Unknown
	}

	switch appErr.Code {
	case errors.CodeUnauthorized:
		return c.Unauthorized
	case errors.CodeForbidden:
		return c.Forbidden
	case errors.CodeNotFound:
		return c.NotFound
	case errors.CodeValidationError:
		return orDefault(appErr.Message, c.Validation)
	case errors.CodeNetworkError:
		return c.Network
	case errors.CodeInternalError:
		return c.Server
	default:
		return orDefault(appErr.Message, c.Unknown)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

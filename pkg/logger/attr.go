package logger

import (
	"log/slog"
)

// Error records err under the key "error". Returns an empty Attr for nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// AccountID records the subscription-owning account under the key "account_id".
func AccountID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("account_id", id)
}

// PrincipalID records the authenticated principal under the key "principal_id".
func PrincipalID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("principal_id", id)
}

// PrincipalKind records the principal kind (user or employee) under the key "principal_kind".
func PrincipalKind(kind any) slog.Attr {
	if kind == nil {
		return slog.Attr{}
	}
	return slog.Any("principal_kind", kind)
}

// PaymentID records the payment request identifier under the key "payment_id".
func PaymentID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("payment_id", id)
}

// Role records a role name under the key "role".
func Role(role string) slog.Attr {
	return slog.String("role", role)
}

// Capability records the requested capability under the key "capability".
func Capability(name string) slog.Attr {
	return slog.String("capability", name)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

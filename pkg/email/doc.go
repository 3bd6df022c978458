// Package email sends the transactional emails of bizdesk.
//
// Sender is the delivery abstraction. PostmarkSender delivers through Postmark and
// LogSender is used in development: it logs every message and can save it to a directory.
//
//	sender, err := email.NewPostmarkSender(cfg)
//	if err != nil {
//	    return err
//	}
//	notifications := email.NewNotifications(sender, store)
//	ledger := payment.NewLedger(store, payment.WithNotifier(notifications))
//
// Notifications renders the embedded html/template bodies for payment decisions and
// expiry warnings and addresses them to the account owner.
//
// All errors can be checked with errors.Is against ErrInvalidConfig, ErrInvalidMessage,
// ErrUnknownTemplate and ErrFailedToSendEmail.
package email

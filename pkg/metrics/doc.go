// Package metrics exposes Prometheus collectors for the HTTP surface, the payment
// ledger and the expiry reminder job.
//
// Each Metrics value owns its own registry, so tests and multiple servers in one
// process never collide on collector names.
//
//	m := metrics.New()
//	r.Use(m.Middleware)
//	r.Handle("/metrics", m.Handler())
//
//	ledger := payment.NewLedger(store, payment.WithNotifier(m.PaymentNotifier(mailer)))
//	job := reminder.New(store, mailer, reminder.WithObserver(m.ObserveReminder))
package metrics

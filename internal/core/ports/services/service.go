package services

// ServiceContainer holds instances of all the application services.
// It is the entry point the handlers and commands use.
type ServiceContainer struct {
	Transaction    TransactionSvcFacade
	Dashboard      DashboardSvc
	Reconciliation ReconciliationSvc
	Auth           AuthSvcFacade
	Google         GoogleSignInSvc // Nil when Google sign-in is not configured
	Realtime       RealtimeSvc
}

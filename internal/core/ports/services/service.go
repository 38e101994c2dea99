package services

// ServiceContainer holds instances of all the application services.
// It is the main entry point handlers use to reach service functionality.
type ServiceContainer struct {
	Account    AccountSvcFacade
	Period     PeriodSvcFacade
	Journal    JournalSvcFacade
	AutoPoster AutoPosterSvc
	Webhook    WebhookSvcFacade
	Reporting  ReportingService
}

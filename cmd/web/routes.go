package main

import "net/http"

func (app *application) routes() *http.ServeMux {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next)))))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.authenticate(shared(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
		mustTrainer = func(next http.Handler) http.Handler {
			return mustSession(app.mustTrainer(next))
		}
	)

	// Plan editing is trainer territory.
	mux.Handle("POST /plans", mustTrainer(http.HandlerFunc(app.planCreatePOST)))
	mux.Handle("GET /plans/{planID}", mustSession(http.HandlerFunc(app.planGET)))
	mux.Handle("POST /plans/{planID}/actions", mustTrainer(http.HandlerFunc(app.planActionPOST)))
	mux.Handle("POST /plans/{planID}/save", mustTrainer(http.HandlerFunc(app.planSavePOST)))
	mux.Handle("GET /plans/{planID}/validation", mustSession(http.HandlerFunc(app.planValidationGET)))

	// Clients mark their own days complete; trainers read progress.
	mux.Handle("POST /plans/{planID}/weeks/{week}/days/{day}/complete",
		mustSession(http.HandlerFunc(app.planCompleteDayPOST)))
	mux.Handle("GET /clients/{userID}/plans", mustSession(http.HandlerFunc(app.clientPlansGET)))
	mux.Handle("GET /clients/{userID}/plans/{planID}/progress",
		mustTrainer(http.HandlerFunc(app.clientProgressGET)))
	mux.Handle("GET /clients/{userID}/records", mustSession(http.HandlerFunc(app.clientRecordsGET)))
	mux.Handle("GET /clients/{userID}/export", mustSession(http.HandlerFunc(app.clientExportGET)))

	mux.Handle("GET /exercises", mustSession(http.HandlerFunc(app.exercisesGET)))
	mux.Handle("GET /exercises/{exerciseID}/info", mustSession(http.HandlerFunc(app.exerciseInfoGET)))
	mux.Handle("POST /exercises/generate", mustTrainer(http.HandlerFunc(app.exerciseGeneratePOST)))

	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	return mux
}

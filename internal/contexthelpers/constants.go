package contexthelpers

type contextKey string

const IsAuthenticatedContextKey = contextKey("isAuthenticated")
const AuthenticatedUserIDContextKey = contextKey("authenticatedUserID")
const IsTrainerContextKey = contextKey("isTrainer")
const CurrentPathContextKey = contextKey("currentPath")

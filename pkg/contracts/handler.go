package contracts

import "github.com/julienschmidt/httprouter"

// Handler is anything that can mount its routes on the shared router. The
// application bootstrap accepts a list of these.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

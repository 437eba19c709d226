package server

import (
	"Perish/handler"
)

type Handlers struct {
	Health *handler.Health
	Feed   *handler.Feed
	Vote   *handler.Vote
}

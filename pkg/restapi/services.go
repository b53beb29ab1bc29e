// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"github.com/arnaudpue/kudu/pkg/service/soak"
)

// Services contains REST API services.
type Services struct {
	Soak SoakService
}

// SoakService service interface for the REST API handlers.
type SoakService interface {
	Status() soak.Status
}

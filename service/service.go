package service

import (
	"partnerbot/pkg/logger"
	"partnerbot/pkg/registration"
	"partnerbot/storage"
)

type IServiceManager interface {
	Session() SessionService
	Registration() *registration.Workflow
}

type service struct {
	sessionService SessionService
	workflow       *registration.Workflow
}

func New(stg storage.IStorage, auth Authenticator, workflow *registration.Workflow, log logger.ILogger) IServiceManager {
	return &service{
		sessionService: NewSessionService(stg.Session(), auth, log),
		workflow:       workflow,
	}
}

func (s *service) Session() SessionService {
	return s.sessionService
}

func (s *service) Registration() *registration.Workflow {
	return s.workflow
}

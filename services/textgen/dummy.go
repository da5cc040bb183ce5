package textgensvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/setulabs/shikshasetu/core/notify"
)

// DummyService returns a canned message and records requests. It stands in
// for the real generator in DEV and in the test suites.
type DummyService struct {
	mu       sync.Mutex
	Requests []notify.Request
	Err      error
}

var _ notify.Generator = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{}
}

func (svc *DummyService) GenerateMessage(_ context.Context, req notify.Request) (notify.Message, error) {
	svc.mu.Lock()
	svc.Requests = append(svc.Requests, req)
	svc.mu.Unlock()

	if svc.Err != nil {
		return notify.Message{}, svc.Err
	}
	return notify.Message{
		Message: fmt.Sprintf("Dear parent, %s has been doing well at school this term. "+
			"We appreciate your continued support.", req.StudentName),
	}, nil
}

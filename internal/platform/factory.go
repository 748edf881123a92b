package platform

import (
	"github.com/aretw0/studynotes/pkg/core"
)

// New opens the configured store and wraps it in a core.Service.
//
//	svc, err := studynotes.New("./data", studynotes.WithAutoInit(true))
//
// The uri argument is adapter-specific (see Init).
func New(uri string, opts ...Option) (*core.Service, error) {
	store, err := Init(uri, opts...)
	if err != nil {
		return nil, err
	}

	o := parse(opts)
	return core.NewService(store,
		core.WithLogger(o.logger),
		core.WithErrorHandler(o.errorHandler()),
		core.WithStrictLoad(o.flag("strict_load")),
		core.WithSampleNotes(o.flag("sample_notes")),
	), nil
}

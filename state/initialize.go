package state

import (
	"time"

	"storyc/project"
	"storyc/script"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{start: time.Now()}
}

// Compiler returns script compiler shared by all commands. Cfg and Log must
// be set before the first call.
func (e *LocalEnv) Compiler() *script.Compiler {
	e.init()
	return e.compiler
}

// Loader returns script and asset loader configured from Cfg.
func (e *LocalEnv) Loader() *project.Loader {
	e.init()
	return e.loader
}

// Crawler combines Compiler and Loader.
func (e *LocalEnv) Crawler() *project.Crawler {
	return project.NewCrawler(e.Compiler(), e.Loader(), e.Log)
}

func (e *LocalEnv) init() {
	e.once.Do(func() {
		e.compiler = script.NewCompiler(e.Log)
		e.loader = project.NewLoader(&e.Cfg.Document, e.Log)
	})
}

package config

import (
	"os"
	"sync"

	"github.com/warptools/zcsv/zcsvapi"
)

// State is the process environment a zcsv command runs in: the ZCSV_* variables that
// are set, and the directory relative archive paths are resolved against.
// Commands read a State rather than the process, so tests can hand them their own.
type State struct {
	// Env holds only the variables listed in envKeys, and only those that are set.
	Env              map[string]string
	WorkingDirectory string
}

// Lookup returns the value of a ZCSV_* variable and whether it was set.
func (s State) Lookup(key string) (string, bool) {
	v, ok := s.Env[key]
	return v, ok
}

func (s State) clone() State {
	env := make(map[string]string, len(s.Env))
	for k, v := range s.Env {
		env[k] = v
	}
	return State{Env: env, WorkingDirectory: s.WorkingDirectory}
}

var (
	globalm sync.Mutex
	global  *State
)

// Load reads a fresh State from the process.
//
// Errors:
//
//    - zcsv-error-internal -- when the working directory can't be determined
func Load() (State, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return State{}, zcsvapi.ErrorInternal("unable to get working directory", err)
	}
	s := State{
		Env:              make(map[string]string, len(envKeys)),
		WorkingDirectory: cwd,
	}
	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			s.Env[key] = v
		}
	}
	return s, nil
}

// ReloadGlobalState replaces the process-wide State with a fresh Load.
// On failure the previous State is kept.
//
// Errors:
//
//    - zcsv-error-internal -- when the working directory can't be determined
func ReloadGlobalState() error {
	s, err := Load()
	if err != nil {
		return err
	}
	globalm.Lock()
	global = &s
	globalm.Unlock()
	return nil
}

// NewState returns a copy of the process-wide State, loading it on first use.
// The copy can be modified freely.
//
// Errors:
//
//    - zcsv-error-internal -- when the first load fails
func NewState() (State, error) {
	globalm.Lock()
	defer globalm.Unlock()
	if global == nil {
		s, err := Load()
		if err != nil {
			return State{}, err
		}
		global = &s
	}
	return global.clone(), nil
}

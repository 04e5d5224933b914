// Package registry provides the central "glue" for the analyzer module
// system.
//
// The Registry stores mappings between the type names used in process
// configurations (e.g. "TestDictionaryBuilder") and the compiled Go
// constructors and parameter types that implement them. Modules register
// themselves at startup; the configuration loader then instantiates each
// configured analyzer through its registration, so a mismatch between code
// and configuration is caught before any event is processed.
package registry

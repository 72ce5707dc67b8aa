// errors.go: structured error definitions for the go-modules system
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gomodules

import (
	"github.com/agilira/go-errors"
)

// Error codes for the go-modules system
const (
	// Discovery errors (1000-1099)
	ErrCodeDirectoryUnreadable = "MODULE_1001"
	ErrCodeEmptyDirectory      = "MODULE_1002"

	// Manifest errors (1100-1199)
	ErrCodeManifestUnreadable  = "MODULE_1101"
	ErrCodeManifestParseError  = "MODULE_1102"
	ErrCodeNoModuleDeclaration = "MODULE_1103"
	ErrCodeMissingModuleName   = "MODULE_1104"
	ErrCodeInvalidModuleName   = "MODULE_1105"
	ErrCodeUnsafeModuleName    = "MODULE_1106"
	ErrCodeInvalidExecContract = "MODULE_1107"

	// Registry errors (1200-1299)
	ErrCodeNameConflict  = "MODULE_1201"
	ErrCodeModuleMissing = "MODULE_1202"

	// Configuration errors (1300-1399)
	ErrCodeConfigUnreadable   = "MODULE_1301"
	ErrCodeConfigParseError   = "MODULE_1302"
	ErrCodeConfigReloadDenied = "MODULE_1303"
	ErrCodeWatcherError       = "MODULE_1304"

	// Invocation errors (1400-1499)
	ErrCodeInvocationFailed = "MODULE_1401"
	ErrCodeInvocationPanic  = "MODULE_1402"
	ErrCodeNoEntryPoint     = "MODULE_1403"
)

// Discovery error constructors

func NewDirectoryUnreadableError(dir string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeDirectoryUnreadable, "Module directory unreadable").
		WithUserMessage("The module directory could not be listed").
		WithContext("directory", dir).
		WithSeverity("error")
}

func NewEmptyDirectoryError(dir string) *errors.Error {
	return errors.New(ErrCodeEmptyDirectory, "Module directory is empty").
		WithUserMessage("No candidate module files were found").
		WithContext("directory", dir).
		WithSeverity("warning")
}

// Manifest error constructors

func NewManifestUnreadableError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestUnreadable, "Manifest unreadable").
		WithUserMessage("The module manifest file could not be read").
		WithContext("manifest_path", path).
		WithSeverity("warning")
}

func NewManifestParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestParseError, "Manifest parse error").
		WithUserMessage("The module manifest is neither valid JSON nor valid YAML").
		WithContext("manifest_path", path).
		WithSeverity("warning")
}

func NewNoModuleDeclarationError(file string) *errors.Error {
	return errors.New(ErrCodeNoModuleDeclaration, "No module declaration").
		WithUserMessage("The manifest does not declare a top-level module object").
		WithContext("file", file).
		WithSeverity("warning")
}

func NewMissingModuleNameError(file string) *errors.Error {
	return errors.New(ErrCodeMissingModuleName, "Missing moduleName").
		WithUserMessage("The module declaration does not carry a moduleName property").
		WithContext("file", file).
		WithSeverity("warning")
}

func NewInvalidModuleNameError(file string, name any) *errors.Error {
	return errors.New(ErrCodeInvalidModuleName, "Invalid moduleName").
		WithUserMessage("moduleName must be a string, number, or boolean").
		WithContext("file", file).
		WithContext("provided_name", name).
		WithSeverity("warning")
}

func NewUnsafeModuleNameError(name string) *errors.Error {
	return errors.New(ErrCodeUnsafeModuleName, "Unsafe module name").
		WithUserMessage("Module name contains path separators or control characters").
		WithContext("module_name", name).
		WithSeverity("warning")
}

func NewInvalidExecContractError(name string) *errors.Error {
	return errors.New(ErrCodeInvalidExecContract, "Invalid exec contract").
		WithUserMessage("The module's exec declaration is not a command specification").
		WithContext("module_name", name).
		WithSeverity("warning")
}

// Registry error constructors

func NewNameConflictError(name, file string) *errors.Error {
	return errors.New(ErrCodeNameConflict, "Module name conflict").
		WithUserMessage("Another module already claimed this name in the current run").
		WithContext("module_name", name).
		WithContext("file", file).
		WithSeverity("warning")
}

func NewModuleMissingError(name string) *errors.Error {
	return errors.New(ErrCodeModuleMissing, "Module not found").
		WithUserMessage("No module with this name is registered").
		WithContext("module_name", name).
		WithSeverity("error")
}

// Configuration error constructors

func NewConfigUnreadableError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigUnreadable, "Module configuration unreadable").
		WithUserMessage("The module configuration file could not be read").
		WithContext("config_path", path).
		WithSeverity("warning")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParseError, "Module configuration parse error").
		WithUserMessage("Failed to parse the module configuration document").
		WithContext("config_path", path).
		WithSeverity("warning")
}

func NewConfigReloadDeniedError() *errors.Error {
	return errors.New(ErrCodeConfigReloadDenied, "Configuration reload denied").
		WithUserMessage("A descriptor without a valid name cannot reload configuration").
		WithSeverity("warning")
}

func NewWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeWatcherError, "Config watcher error: "+message).
		WithUserMessage("Module configuration monitoring failed").
		WithSeverity("error")
}

// Invocation error constructors

func NewInvocationFailedError(name string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeInvocationFailed, "Module invocation failed").
		WithUserMessage("The module entry point returned an error").
		WithContext("module_name", name).
		WithSeverity("error")
}

func NewInvocationPanicError(name string, recovered any) *errors.Error {
	return errors.New(ErrCodeInvocationPanic, "Module invocation panicked").
		WithUserMessage("The module entry point panicked and was isolated").
		WithContext("module_name", name).
		WithContext("panic_value", recovered).
		WithSeverity("error")
}

func NewNoEntryPointError(name string) *errors.Error {
	return errors.New(ErrCodeNoEntryPoint, "No exec function").
		WithUserMessage("The module does not expose an invocable entry point").
		WithContext("module_name", name).
		WithSeverity("warning")
}

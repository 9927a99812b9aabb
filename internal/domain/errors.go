package domain

import "errors"

// Path errors - 路徑安全錯誤
var (
	// ErrUnsafePath indicates a path that resolves outside the root directory
	ErrUnsafePath = errors.New("path escapes root directory")
)

// Storage errors - 儲存適配器層錯誤
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile indicates expected a file but got a directory
	ErrNotFile = errors.New("not a file")
)

// Request validation errors - 請求驗證錯誤
var (
	// ErrTargetMissing indicates the upload or create-folder target directory does not exist
	ErrTargetMissing = errors.New("target directory does not exist")

	// ErrNothingSelected indicates an upload batch without any named file
	ErrNothingSelected = errors.New("no files selected for upload")

	// ErrNameEmpty indicates a blank folder name
	ErrNameEmpty = errors.New("name is empty")

	// ErrInvalidName indicates a name made only of characters that cannot be stored
	ErrInvalidName = errors.New("invalid name")
)

// Config errors - 設定檔錯誤
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)

/*
Package filesystem provides the vault abstraction the catalog runs on.

# Vault

Vault is the host file store: list files, stat, read, open and write by
vault-relative, slash-separated path. OSVault implements it over a local
directory:

	v, err := filesystem.NewOSVault("/notes", filesystem.DefaultRetryConfig())
	files, err := v.List()              // hidden files and dirs skipped
	data, err := v.Read("media.json")
	err = v.Write("media.json", data)   // temp file + rename

Paths that would escape the root return ErrOutsideVault.

# NFS Retry

Stat, open and read go through StatWithRetry, OpenWithRetry and
ReadFileWithRetry, which retry ESTALE (stale file handle) errors with
exponential backoff:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

All other errors fail immediately.

# Watcher

Watcher wraps fsnotify and reports create, modify, delete and rename
events. A rename is paired with the create that follows it within
DefaultRenameWindow; an unpaired rename is reported as a delete.

# Metrics

Operation, retry and watcher metrics are recorded through the Observer set
with SetObserver. The metrics package supplies the implementation.
*/
package filesystem

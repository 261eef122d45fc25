// Command mediactl inspects and maintains a vault's media catalog without
// running the server.
//
// Usage:
//
//	mediactl <command> [arguments]
//
// Commands:
//
//	scan      scan the vault once and save the catalog
//	list      list records, optionally by kind
//	search    search titles, descriptions and tags
//	tags      list all, popular or recent tags
//	refs      list notes that embed a media file
//	export    write the catalog JSON to a file or stdout
//	import    replace the catalog with an exported file
//	cleanup   drop records whose files are gone
//	stats     show record counts
//
// mediactl reads the same configuration as the server (VAULT_DIR,
// STORAGE_PATH, SCAN_ROOTS, the YAML config file). Listings are printed as a
// table on a terminal and as JSON otherwise.
package main

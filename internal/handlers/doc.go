// Package handlers provides the HTTP JSON API of the media catalog.
//
// It includes handlers for:
//   - Listing, filtering and searching media records
//   - Looking up records by id or vault path (creating them on first access)
//   - Editing titles, descriptions and tags
//   - Popular, recent and all tags
//   - Export, import and rescans
//   - Note references to a media file
//   - Health checks, version and metrics
package handlers

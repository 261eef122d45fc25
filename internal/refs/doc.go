// Package refs finds the notes that embed a media file.
//
// Notes are markdown files in the vault. Three embed forms are recognized:
// wikilinks (![[photo.png]]), markdown images (![alt](dir/photo.png)) and
// HTML media elements (<img>, <video>, <audio>, <source>) parsed with
// goquery. Link targets are resolved against the vault file list the way a
// note editor does it: relative to the note, then from the vault root, and
// for bare wikilink names by shortest matching path.
package refs

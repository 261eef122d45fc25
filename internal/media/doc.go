// Package media measures image dimensions for the dimension cache.
//
// DecodeProber reads headers with image.DecodeConfig (gif, jpeg, png plus
// bmp, tiff and webp from golang.org/x/image), falls back to a full
// imaging decode with EXIF orientation, and reads SVG sizes from the root
// element. VipsProber uses libvips when InitVips has been called, and
// ChainProber combines probers in order of preference.
package media

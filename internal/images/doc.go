// Package images reconciles inline illustrations with uploaded image
// assets: it extracts caption markers and embedded base64 images
// before the text passes run, rewrites image references to their final
// storage URLs afterwards, and applies extracted captions as alt text.
package images

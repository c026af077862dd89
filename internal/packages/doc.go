// Package packages orchestrates the external package tooling: version
// resolution, restore/build/pack, publishing, and the local-update workflow
// that substitutes a freshly built package into dependent repositories.
package packages

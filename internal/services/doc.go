// Package services implements clients for the external collaborators: the
// Spotify catalog and the Pitchfork review feed.
//
// The [Catalog] interface is the typed boundary between the core and the
// music catalog: search, album/track fetches, and the library, follow, and
// playlist mutations the favorite synchronizer drives. [SpotifyService] is
// the production implementation; response shapes are validated at this
// boundary so the core never handles untyped data.
//
// The [ReviewSource] interface produces raw review records. [PitchforkSource]
// scrapes the reviews index page; selector-level failures on a single entry
// are skipped so one malformed review never loses the page.
package services

// SPDX-License-Identifier: EPL-2.0

package audio

// Metadata keys shared by the container formats. Formats map their native
// tags (RIFF INFO, ID3v2 frames, Vorbis comments) onto these.
const (
	MetaTitle     = "title"
	MetaArtist    = "artist"
	MetaAlbum     = "album"
	MetaComment   = "comment"
	MetaGenre     = "genre"
	MetaDate      = "date"
	MetaTrack     = "track"
	MetaCopyright = "copyright"
	MetaEncoder   = "encoder"
)

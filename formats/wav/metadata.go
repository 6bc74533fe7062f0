// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"github.com/go-audio/wav"

	"github.com/ik5/audxcode/audio"
)

func fromInfo(m *wav.Metadata) map[string]string {
	if m == nil {
		return nil
	}

	md := make(map[string]string)
	set := func(k, v string) {
		if v != "" {
			md[k] = v
		}
	}
	set(audio.MetaTitle, m.Title)
	set(audio.MetaArtist, m.Artist)
	set(audio.MetaAlbum, m.Product)
	set(audio.MetaComment, m.Comments)
	set(audio.MetaGenre, m.Genre)
	set(audio.MetaDate, m.CreationDate)
	set(audio.MetaTrack, m.TrackNbr)
	set(audio.MetaCopyright, m.Copyright)
	set(audio.MetaEncoder, m.Software)

	if len(md) == 0 {
		return nil
	}

	return md
}

// toInfo maps md onto INFO entries. go-audio/wav sizes each entry as the
// value plus its terminator and never writes the pad byte an odd size needs,
// while its reader skips one; an even value gets a second NUL so every entry
// stays even sized.
func toInfo(md map[string]string) *wav.Metadata {
	if len(md) == 0 {
		return nil
	}

	v := func(k string) string {
		s := md[k]
		if s != "" && len(s)%2 == 0 {
			s += "\x00"
		}

		return s
	}

	return &wav.Metadata{
		Title:        v(audio.MetaTitle),
		Artist:       v(audio.MetaArtist),
		Product:      v(audio.MetaAlbum),
		Comments:     v(audio.MetaComment),
		Genre:        v(audio.MetaGenre),
		CreationDate: v(audio.MetaDate),
		TrackNbr:     v(audio.MetaTrack),
		Copyright:    v(audio.MetaCopyright),
		Software:     v(audio.MetaEncoder),
	}
}

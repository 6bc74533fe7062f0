// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"io"
	"strings"

	"github.com/bogem/id3v2/v2"

	"github.com/ik5/audxcode/audio"
)

const id3HeaderSize = 10

// id3Size returns the full length of the ID3v2 tag starting header, or 0 if
// header does not start one.
func id3Size(header []byte) int {
	if len(header) < id3HeaderSize || !bytes.Equal(header[:3], []byte("ID3")) {
		return 0
	}

	size := 0
	for _, b := range header[6:10] {
		if b&0x80 != 0 {
			return 0
		}
		size = size<<7 | int(b)
	}

	n := id3HeaderSize + size
	if header[5]&0x10 != 0 { // footer
		n += id3HeaderSize
	}

	return n
}

var id3TextFrames = map[string]string{
	"TRCK": audio.MetaTrack,
	"TCOP": audio.MetaCopyright,
	"TSSE": audio.MetaEncoder,
}

// readID3 parses a complete ID3v2 tag into metadata. Versions the parser
// does not know (v2.2) yield no metadata.
func readID3(tagBytes []byte) map[string]string {
	tag, err := id3v2.ParseReader(bytes.NewReader(tagBytes), id3v2.Options{Parse: true})
	if err != nil {
		return nil
	}

	md := make(map[string]string)
	set := func(k, v string) {
		if v = strings.TrimRight(v, "\x00"); v != "" {
			md[k] = v
		}
	}

	set(audio.MetaTitle, tag.Title())
	set(audio.MetaArtist, tag.Artist())
	set(audio.MetaAlbum, tag.Album())
	set(audio.MetaGenre, tag.Genre())
	set(audio.MetaDate, tag.Year())
	for id, key := range id3TextFrames {
		set(key, tag.GetTextFrame(id).Text)
	}
	for _, f := range tag.GetFrames(tag.CommonID("Comments")) {
		if c, ok := f.(id3v2.CommentFrame); ok {
			set(audio.MetaComment, c.Text)
			break
		}
	}

	if len(md) == 0 {
		return nil
	}

	return md
}

// writeID3 writes metadata as an ID3v2.4 tag with UTF-8 text frames.
func writeID3(w io.Writer, md map[string]string) error {
	if len(md) == 0 {
		return nil
	}

	tag := id3v2.NewEmptyTag()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if v := md[audio.MetaTitle]; v != "" {
		tag.SetTitle(v)
	}
	if v := md[audio.MetaArtist]; v != "" {
		tag.SetArtist(v)
	}
	if v := md[audio.MetaAlbum]; v != "" {
		tag.SetAlbum(v)
	}
	if v := md[audio.MetaGenre]; v != "" {
		tag.SetGenre(v)
	}
	if v := md[audio.MetaDate]; v != "" {
		tag.SetYear(v)
	}
	for id, key := range id3TextFrames {
		if v := md[key]; v != "" {
			tag.AddTextFrame(id, id3v2.EncodingUTF8, v)
		}
	}
	if v := md[audio.MetaComment]; v != "" {
		tag.AddCommentFrame(id3v2.CommentFrame{
			Encoding: id3v2.EncodingUTF8,
			Language: "eng",
			Text:     v,
		})
	}

	if !tag.HasFrames() {
		return nil
	}

	_, err := tag.WriteTo(w)

	return err
}

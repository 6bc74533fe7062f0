// SPDX-License-Identifier: EPL-2.0

// Package container opens media files for reading and writing through the
// formats of an audio.Registry.
//
// Open accepts a path or an http(s) URL. Remote sources are downloaded to
// a temporary file first, since every demuxer needs to seek; the file is
// removed by Close.
//
//	in, err := container.Open(ctx, "song.mp3", reg)
//	if err != nil {
//	    // errors.Is(err, audio.ErrOpen)
//	}
//	defer in.Close()
//
//	pkt := audio.NewPacket()
//	for {
//	    err := in.ReadPacket(pkt)
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Create opens an output by format name. Streams are added before the
// header is written; Close finalizes the file:
//
//	out, _ := container.Create("out.wav", "wav", reg)
//	out.AddStream(params, nil)
//	out.WriteHeader()
//	out.WritePacket(pkt, false)
//	out.Close()
package container

package mp4sink

import (
	"fmt"
	"io"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Probe summarises the video track of a fragmented MP4 file.
type Probe struct {
	Codec     string
	Width     int
	Height    int
	Profile   int
	Level     int
	Timescale uint32
	Fragments int
	Samples   int
	Keyframes int
	Duration  time.Duration
	// SampleSizes lists the AVCC sample sizes in decode order.
	SampleSizes []int
}

// ProbeReader decodes r and walks every fragment of its video track.
func ProbeReader(r io.Reader) (Probe, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return Probe{}, fmt.Errorf("decode mp4: %w", err)
	}
	if file.Init == nil || file.Init.Moov == nil {
		return Probe{}, ErrNoVideoTrack
	}

	var p Probe
	var videoID uint32
	for _, trak := range file.Init.Moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		videoID = trak.Tkhd.TrackID
		p.Width = int(trak.Tkhd.Width >> 16)
		p.Height = int(trak.Tkhd.Height >> 16)
		if trak.Mdia.Mdhd != nil {
			p.Timescale = trak.Mdia.Mdhd.Timescale
		}
		if trak.Mdia.Minf != nil && trak.Mdia.Minf.Stbl != nil && trak.Mdia.Minf.Stbl.Stsd != nil {
			stbl := trak.Mdia.Minf.Stbl
			for _, child := range stbl.Stsd.Children {
				entry, ok := child.(*mp4.VisualSampleEntryBox)
				if !ok {
					continue
				}
				p.Codec = entry.Type()
				if entry.AvcC != nil {
					p.Profile = int(entry.AvcC.AVCProfileIndication)
					p.Level = int(entry.AvcC.AVCLevelIndication)
				}
			}
		}
		break
	}
	if videoID == 0 {
		return Probe{}, ErrNoVideoTrack
	}

	var trex *mp4.TrexBox
	if mvex := file.Init.Moov.Mvex; mvex != nil {
		for _, t := range mvex.Trexs {
			if t.TrackID == videoID {
				trex = t
			}
		}
	}

	var total uint64
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			p.Fragments++
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return Probe{}, fmt.Errorf("get samples: %w", err)
			}
			for _, s := range samples {
				p.Samples++
				if s.Flags == mp4.SyncSampleFlags {
					p.Keyframes++
				}
				p.SampleSizes = append(p.SampleSizes, len(s.Data))
				total += uint64(s.Dur)
			}
		}
	}
	if p.Timescale > 0 {
		p.Duration = time.Duration(total * uint64(time.Second) / uint64(p.Timescale))
	}
	return p, nil
}

package simsession

import "github.com/user/hwenc/pkg/ports"

const (
	nalSPS = 7
	nalPPS = 8
	nalIDR = 5
	nalP   = 1

	profileBaseline = 66
)

// levels maps a maximum frame size in macroblocks to level_idc.
var levels = []struct {
	maxMBs int
	idc    uint64
}{
	{99, 10},
	{396, 20},
	{1620, 30},
	{3600, 31},
	{5120, 32},
	{8192, 40},
	{8704, 42},
	{22080, 50},
	{36864, 51},
}

func levelFor(mbs int) uint64 {
	for _, l := range levels {
		if mbs <= l.maxMBs {
			return l.idc
		}
	}
	return 52
}

func nalHeader(refIdc, nalType byte) byte {
	return refIdc<<5 | nalType
}

// buildSPS returns a constrained baseline sequence parameter set NAL unit
// for format, cropped to the visible size.
func buildSPS(format ports.VideoFormat) []byte {
	mbW := format.AlignedWidth() / 16
	mbH := format.AlignedHeight() / 16
	cropRight := (format.AlignedWidth() - format.Width) / 2
	cropBottom := (format.AlignedHeight() - format.Height) / 2

	var w bitWriter
	w.bits(profileBaseline, 8)
	w.bits(0xC0, 8) // constraint_set0 and constraint_set1
	w.bits(levelFor(mbW*mbH), 8)
	w.ue(0) // seq_parameter_set_id
	w.ue(0) // log2_max_frame_num_minus4
	w.ue(2) // pic_order_cnt_type
	w.ue(1) // max_num_ref_frames
	w.flag(false)
	w.ue(uint(mbW - 1))
	w.ue(uint(mbH - 1))
	w.flag(true) // frame_mbs_only_flag
	w.flag(true) // direct_8x8_inference_flag
	if cropRight > 0 || cropBottom > 0 {
		w.flag(true)
		w.ue(0)
		w.ue(uint(cropRight))
		w.ue(0)
		w.ue(uint(cropBottom))
	} else {
		w.flag(false)
	}
	w.flag(false) // vui_parameters_present_flag

	return append([]byte{nalHeader(3, nalSPS)}, escape(w.trailing())...)
}

// buildPPS returns the picture parameter set matching buildSPS.
func buildPPS() []byte {
	var w bitWriter
	w.ue(0) // pic_parameter_set_id
	w.ue(0) // seq_parameter_set_id
	w.flag(false)
	w.flag(false)
	w.ue(0) // num_slice_groups_minus1
	w.ue(0) // num_ref_idx_l0_default_active_minus1
	w.ue(0) // num_ref_idx_l1_default_active_minus1
	w.flag(false)
	w.bits(0, 2)
	w.se(0) // pic_init_qp_minus26
	w.se(0) // pic_init_qs_minus26
	w.se(0) // chroma_qp_index_offset

	// deblocking_filter_control_present_flag
	w.flag(true)
	w.flag(false)
	w.flag(false)

	return append([]byte{nalHeader(3, nalPPS)}, escape(w.trailing())...)
}

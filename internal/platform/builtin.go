package platform

import "github.com/retroenv/vecasm/internal/symbols"

// builtinSymbols contains the BIOS entry points, RAM variables and hardware
// registers that are used when no descriptor file is found.
var builtinSymbols = []struct {
	name  string
	value uint16
}{
	// hardware registers
	{"VIA_port_b", 0xD000},
	{"VIA_port_a", 0xD001},
	{"VIA_DDR_b", 0xD002},
	{"VIA_DDR_a", 0xD003},
	{"VIA_t1_cnt_lo", 0xD004},
	{"VIA_t1_cnt_hi", 0xD005},
	{"VIA_t2_lo", 0xD008},
	{"VIA_t2_hi", 0xD009},
	{"VIA_shift_reg", 0xD00A},
	{"VIA_aux_cntl", 0xD00B},
	{"VIA_cntl", 0xD00C},
	{"VIA_int_flags", 0xD00D},
	{"VIA_int_enable", 0xD00E},

	// RAM variables
	{"Vec_Snd_Shadow", 0xC800},
	{"Vec_Btn_State", 0xC80F},
	{"Vec_Prev_Btns", 0xC810},
	{"Vec_Buttons", 0xC811},
	{"Vec_Button_1_1", 0xC812},
	{"Vec_Button_1_2", 0xC813},
	{"Vec_Button_1_3", 0xC814},
	{"Vec_Button_1_4", 0xC815},
	{"Vec_Joy_Resltn", 0xC81A},
	{"Vec_Joy_1_X", 0xC81B},
	{"Vec_Joy_1_Y", 0xC81C},
	{"Vec_Joy_2_X", 0xC81D},
	{"Vec_Joy_2_Y", 0xC81E},
	{"Vec_Joy_Mux", 0xC81F},
	{"Vec_Misc_Count", 0xC823},
	{"Vec_0Ref_Enable", 0xC824},
	{"Vec_Loop_Count", 0xC825},
	{"Vec_Brightness", 0xC827},
	{"Vec_Dot_Dwell", 0xC828},
	{"Vec_Pattern", 0xC829},
	{"Vec_Text_HW", 0xC82A},
	{"Vec_Text_Height", 0xC82A},
	{"Vec_Text_Width", 0xC82B},
	{"Vec_Str_Ptr", 0xC82C},
	{"Vec_Counters", 0xC82E},
	{"Vec_Seed_Ptr", 0xC87B},
	{"Vec_Random_Seed", 0xC87D},
	{"Vec_Music_Flag", 0xC856},
	{"Vec_Music_Ptr", 0xC853},
	{"Vec_Default_Stk", 0xCBEA},

	// BIOS routines
	{"Cold_Start", 0xF000},
	{"Warm_Start", 0xF06C},
	{"Init_VIA", 0xF14C},
	{"Init_OS_RAM", 0xF164},
	{"Init_OS", 0xF18B},
	{"Wait_Recal", 0xF192},
	{"Set_Refresh", 0xF1A2},
	{"DP_to_D0", 0xF1AA},
	{"DP_to_C8", 0xF1AF},
	{"Read_Btns_Mask", 0xF1B4},
	{"Read_Btns", 0xF1BA},
	{"Joy_Analog", 0xF1F5},
	{"Joy_Digital", 0xF1F8},
	{"Sound_Byte", 0xF256},
	{"Sound_Byte_x", 0xF259},
	{"Sound_Byte_raw", 0xF25B},
	{"Clear_Sound", 0xF272},
	{"Sound_Bytes", 0xF27D},
	{"Sound_Bytes_x", 0xF284},
	{"Do_Sound", 0xF289},
	{"Intensity_1F", 0xF29D},
	{"Intensity_3F", 0xF2A1},
	{"Intensity_5F", 0xF2A5},
	{"Intensity_7F", 0xF2A9},
	{"Intensity_a", 0xF2AB},
	{"Dot_ix_b", 0xF2BE},
	{"Dot_ix", 0xF2C1},
	{"Dot_d", 0xF2C3},
	{"Dot_here", 0xF2C5},
	{"Dot_List", 0xF2D5},
	{"Dot_List_Reset", 0xF2DE},
	{"Recalibrate", 0xF2E6},
	{"Moveto_x_7F", 0xF2F2},
	{"Moveto_d_7F", 0xF2FC},
	{"Moveto_ix_FF", 0xF308},
	{"Moveto_ix_7F", 0xF30C},
	{"Moveto_ix_b", 0xF30E},
	{"Moveto_ix", 0xF310},
	{"Moveto_d", 0xF312},
	{"Reset0Ref_D0", 0xF34A},
	{"Check0Ref", 0xF34F},
	{"Reset0Ref", 0xF354},
	{"Reset_Pen", 0xF35B},
	{"Reset0Int", 0xF36B},
	{"Print_Str_hwyx", 0xF373},
	{"Print_Str_yx", 0xF378},
	{"Print_Str_d", 0xF37A},
	{"Print_List_hw", 0xF385},
	{"Print_List", 0xF38A},
	{"Print_List_chk", 0xF38C},
	{"Print_Ships_x", 0xF391},
	{"Print_Ships", 0xF393},
	{"Mov_Draw_VLc_a", 0xF3AD},
	{"Mov_Draw_VL_b", 0xF3B1},
	{"Mov_Draw_VLcs", 0xF3B5},
	{"Mov_Draw_VL_ab", 0xF3B7},
	{"Mov_Draw_VL_a", 0xF3B9},
	{"Mov_Draw_VL", 0xF3BC},
	{"Mov_Draw_VL_d", 0xF3BE},
	{"Draw_VLc", 0xF3CE},
	{"Draw_VL_b", 0xF3D2},
	{"Draw_VLcs", 0xF3D6},
	{"Draw_VL_ab", 0xF3D8},
	{"Draw_VL_a", 0xF3DA},
	{"Draw_VL", 0xF3DD},
	{"Draw_Line_d", 0xF3DF},
	{"Draw_VLp_FF", 0xF404},
	{"Draw_VLp_7F", 0xF408},
	{"Draw_VLp_scale", 0xF40C},
	{"Draw_VLp_b", 0xF40E},
	{"Draw_VLp", 0xF410},
	{"Draw_Pat_VL_a", 0xF434},
	{"Draw_Pat_VL", 0xF437},
	{"Draw_Pat_VL_d", 0xF439},
	{"Draw_VL_mode", 0xF46E},
	{"Print_Str", 0xF495},
	{"Random_3", 0xF511},
	{"Random", 0xF517},
	{"Init_Music_Buf", 0xF533},
	{"Clear_x_b", 0xF53F},
	{"Clear_C8_RAM", 0xF542},
	{"Clear_x_256", 0xF545},
	{"Clear_x_d", 0xF548},
	{"Clear_x_b_80", 0xF550},
	{"Clear_x_b_a", 0xF552},
	{"Dec_3_Counters", 0xF55A},
	{"Dec_6_Counters", 0xF55E},
	{"Dec_Counters", 0xF563},
	{"Delay_3", 0xF56D},
	{"Delay_2", 0xF571},
	{"Delay_1", 0xF575},
	{"Delay_0", 0xF579},
	{"Delay_b", 0xF57A},
	{"Delay_RTS", 0xF57D},
	{"Bitmask_a", 0xF57E},
	{"Abs_a_b", 0xF584},
	{"Abs_b", 0xF58B},
	{"Rise_Run_Angle", 0xF593},
	{"Get_Rise_Idx", 0xF5D9},
	{"Get_Run_Idx", 0xF5DB},
	{"Init_Music_chk", 0xF687},
	{"Init_Music", 0xF68D},
	{"Select_Game", 0xF7A9},
	{"Clear_Score", 0xF84F},
	{"Add_Score_a", 0xF85E},
	{"Add_Score_d", 0xF87C},
	{"Strip_Zeros", 0xF8B7},
	{"Compare_Score", 0xF8C7},
	{"New_High_Score", 0xF8D8},
	{"Obj_Will_Hit_u", 0xF8E5},
	{"Obj_Will_Hit", 0xF8F3},
	{"Obj_Hit", 0xF8FF},
	{"Explosion_Snd", 0xF92E},
	{"Draw_Grid_VL", 0xFF9F},
	{"music1", 0xFD0D},
}

// Builtin returns the built-in platform table.
func Builtin() *symbols.Table {
	table := symbols.NewTable()
	for _, sym := range builtinSymbols {
		table.SetPlatform(sym.name, sym.value)
	}
	return table
}

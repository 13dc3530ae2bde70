package defs

import "github.com/blamlang/blam/src/compiler/tp"

// The engine definitions below are consumed, not derived, by the compiler
// core: they describe what each engine variant exports to scripts and under
// which function table index. The GBX releases share one table; MCC and the
// Xbox build each renumbered theirs.

func avail(mcc, xbox, gbx int32) Availability {
	return Availability{MCC: mcc, Xbox: xbox, GBXRetail: gbx, GBXDemo: gbx, GBXCustom: gbx}
}

func pcOnly(mcc, gbx int32) Availability {
	return Availability{MCC: mcc, Xbox: NoIndex, GBXRetail: gbx, GBXDemo: gbx, GBXCustom: gbx}
}

func mccOnly(mcc int32) Availability {
	return Availability{MCC: mcc, Xbox: NoIndex, GBXRetail: NoIndex, GBXDemo: NoIndex, GBXCustom: NoIndex}
}

func p(t tp.ValueType) Param          { return Param{Type: t} }
func many(t tp.ValueType) Param       { return Param{Type: t, Many: true} }
func opt(t tp.ValueType) Param        { return Param{Type: t, Optional: true} }
func manyOpt(t tp.ValueType) Param    { return Param{Type: t, Many: true, Optional: true} }
func upper(t tp.ValueType) Param      { return Param{Type: t, AllowUppercase: true} }

var engineFunctions = []*Function{
	// control forms
	{Name: "begin", Return: tp.Passthrough, Params: []Param{manyOpt(tp.Passthrough)}, PassthroughLast: true, Availability: avail(577, 0, 0)},
	{Name: "begin_random", Return: tp.Passthrough, Params: []Param{manyOpt(tp.Passthrough)}, PassthroughLast: true, Availability: avail(578, 1, 1)},
	{Name: "if", Return: tp.Passthrough, Params: []Param{p(tp.Boolean), p(tp.Passthrough), opt(tp.Passthrough)}, Availability: avail(579, 2, 2)},
	{Name: "set", Return: tp.Passthrough, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Availability: avail(580, 4, 4)},

	// logic
	{Name: "and", Return: tp.Boolean, Params: []Param{p(tp.Boolean), many(tp.Boolean)}, Availability: avail(581, 5, 5)},
	{Name: "or", Return: tp.Boolean, Params: []Param{p(tp.Boolean), many(tp.Boolean)}, Availability: avail(582, 6, 6)},
	{Name: "not", Return: tp.Boolean, Params: []Param{p(tp.Boolean)}, Availability: avail(583, 12, 12)},

	// arithmetic
	{Name: "+", Return: tp.Real, Params: []Param{p(tp.Passthrough), many(tp.Passthrough)}, NumberPassthrough: true, Availability: avail(584, 7, 7)},
	{Name: "-", Return: tp.Real, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, NumberPassthrough: true, Availability: avail(585, 8, 8)},
	{Name: "*", Return: tp.Real, Params: []Param{p(tp.Passthrough), many(tp.Passthrough)}, NumberPassthrough: true, Availability: avail(586, 9, 9)},
	{Name: "/", Return: tp.Real, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, NumberPassthrough: true, Availability: avail(587, 10, 10)},
	{Name: "min", Return: tp.Real, Params: []Param{p(tp.Passthrough), many(tp.Passthrough)}, NumberPassthrough: true, Availability: avail(588, 13, 13)},
	{Name: "max", Return: tp.Real, Params: []Param{p(tp.Passthrough), many(tp.Passthrough)}, NumberPassthrough: true, Availability: avail(589, 14, 14)},

	// comparison
	{Name: "=", Return: tp.Boolean, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Availability: avail(590, 15, 15)},
	{Name: "!=", Return: tp.Boolean, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Availability: avail(591, 16, 16)},
	{Name: ">", Return: tp.Boolean, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Inequality: true, Availability: avail(592, 17, 17)},
	{Name: "<", Return: tp.Boolean, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Inequality: true, Availability: avail(593, 18, 18)},
	{Name: ">=", Return: tp.Boolean, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Inequality: true, Availability: avail(594, 19, 19)},
	{Name: "<=", Return: tp.Boolean, Params: []Param{p(tp.Passthrough), p(tp.Passthrough)}, Inequality: true, Availability: avail(595, 20, 20)},

	// script scheduling
	{Name: "sleep", Return: tp.Void, Params: []Param{p(tp.Short), opt(tp.Script)}, Availability: avail(596, 21, 21)},
	{Name: "sleep_until", Return: tp.Void, Params: []Param{p(tp.Boolean), opt(tp.Short)}, Availability: avail(597, 22, 22)},
	{Name: "wake", Return: tp.Void, Params: []Param{p(tp.Script)}, Availability: avail(598, 23, 23)},
	{Name: "inspect", Return: tp.Void, Params: []Param{p(tp.Passthrough)}, Availability: avail(599, 24, 24)},
	{Name: "print", Return: tp.Void, Params: []Param{upper(tp.String)}, Availability: avail(600, 26, 26)},

	// game state
	{Name: "game_speed", Return: tp.Void, Params: []Param{p(tp.Real)}, Availability: avail(601, 27, 27)},
	{Name: "game_difficulty_get", Return: tp.GameDifficulty, Availability: avail(602, 28, 28)},
	{Name: "game_difficulty_get_real", Return: tp.GameDifficulty, Availability: avail(603, 29, 29)},
	{Name: "game_save", Return: tp.Void, Availability: avail(604, 30, 30)},
	{Name: "game_save_no_timeout", Return: tp.Void, Availability: avail(605, 31, 31)},
	{Name: "game_revert", Return: tp.Void, Availability: avail(606, 32, 32)},
	{Name: "map_reset", Return: tp.Void, Availability: avail(607, 33, 33)},
	{Name: "switch_bsp", Return: tp.Void, Params: []Param{p(tp.Short)}, Availability: avail(608, 34, 34)},
	{Name: "structure_bsp_index", Return: tp.Short, Availability: avail(609, 35, 35)},
	{Name: "random_range", Return: tp.Short, Params: []Param{p(tp.Short), p(tp.Short)}, Availability: avail(610, 36, 36)},
	{Name: "real_random_range", Return: tp.Real, Params: []Param{p(tp.Real), p(tp.Real)}, Availability: avail(611, 37, 37)},
	{Name: "physics_set_gravity", Return: tp.Void, Params: []Param{p(tp.Real)}, Availability: avail(612, 38, 38)},

	// players and object lists
	{Name: "players", Return: tp.ObjectList, Availability: avail(613, 40, 40)},
	{Name: "list_get", Return: tp.Object, Params: []Param{p(tp.ObjectList), p(tp.Short)}, Availability: avail(614, 41, 41)},
	{Name: "list_count", Return: tp.Short, Params: []Param{p(tp.ObjectList)}, Availability: avail(615, 42, 42)},

	// units and vehicles
	{Name: "unit", Return: tp.Unit, Params: []Param{p(tp.Object)}, Availability: avail(616, 44, 44)},
	{Name: "unit_get_health", Return: tp.Real, Params: []Param{p(tp.Unit)}, Availability: avail(617, 45, 45)},
	{Name: "unit_get_shield", Return: tp.Real, Params: []Param{p(tp.Unit)}, Availability: avail(618, 46, 46)},
	{Name: "unit_enter_vehicle", Return: tp.Void, Params: []Param{p(tp.Unit), p(tp.Vehicle), p(tp.String)}, Availability: avail(619, 47, 47)},
	{Name: "unit_exit_vehicle", Return: tp.Void, Params: []Param{p(tp.Unit)}, Availability: avail(620, 48, 48)},

	// objects
	{Name: "object_create", Return: tp.Void, Params: []Param{p(tp.ObjectName)}, Availability: avail(621, 50, 50)},
	{Name: "object_create_anew", Return: tp.Void, Params: []Param{p(tp.ObjectName)}, Availability: avail(622, 51, 51)},
	{Name: "object_destroy", Return: tp.Void, Params: []Param{p(tp.ObjectName)}, Availability: avail(623, 52, 52)},
	{Name: "object_teleport", Return: tp.Void, Params: []Param{p(tp.Unit), p(tp.CutsceneFlag)}, Availability: avail(624, 53, 53)},
	{Name: "objects_attach", Return: tp.Void, Params: []Param{p(tp.Object), p(tp.String), p(tp.Object), p(tp.String)}, Availability: avail(625, 54, 54)},
	{Name: "objects_detach", Return: tp.Void, Params: []Param{p(tp.Object), p(tp.Object)}, Availability: avail(626, 55, 55)},
	{Name: "volume_test_object", Return: tp.Boolean, Params: []Param{p(tp.TriggerVolume), p(tp.Object)}, Availability: avail(627, 56, 56)},
	{Name: "volume_teleport_players_not_inside", Return: tp.Void, Params: []Param{p(tp.TriggerVolume), p(tp.CutsceneFlag)}, Availability: avail(628, 57, 57)},

	// effects and damage
	{Name: "effect_new", Return: tp.Void, Params: []Param{p(tp.Effect), p(tp.CutsceneFlag)}, Availability: avail(629, 60, 60)},
	{Name: "damage_new", Return: tp.Void, Params: []Param{p(tp.Damage), p(tp.CutsceneFlag)}, Availability: avail(630, 61, 61)},

	// devices
	{Name: "device_set_power", Return: tp.Void, Params: []Param{p(tp.DeviceName), p(tp.Real)}, Availability: avail(631, 63, 63)},
	{Name: "device_get_power", Return: tp.Real, Params: []Param{p(tp.DeviceName)}, Availability: avail(632, 64, 64)},
	{Name: "device_group_set_immediate", Return: tp.Void, Params: []Param{p(tp.DeviceGroup), p(tp.Real)}, Availability: avail(633, 65, 65)},

	// ai
	{Name: "ai_place", Return: tp.Void, Params: []Param{p(tp.Ai)}, Availability: avail(634, 70, 70)},
	{Name: "ai_kill", Return: tp.Void, Params: []Param{p(tp.Ai)}, Availability: avail(635, 71, 71)},
	{Name: "ai_attach", Return: tp.Void, Params: []Param{p(tp.Unit), p(tp.Ai)}, Availability: avail(636, 72, 72)},
	{Name: "ai_allegiance", Return: tp.Void, Params: []Param{p(tp.Team), p(tp.Team)}, Availability: avail(637, 73, 73)},
	{Name: "ai_magically_see_players", Return: tp.Void, Params: []Param{p(tp.Ai)}, Availability: avail(638, 74, 74)},

	// sound
	{Name: "sound_impulse_start", Return: tp.Void, Params: []Param{p(tp.Sound), p(tp.Object), p(tp.Real)}, Availability: avail(639, 80, 80)},
	{Name: "sound_looping_start", Return: tp.Void, Params: []Param{p(tp.LoopingSound), p(tp.Object), p(tp.Real)}, Availability: avail(640, 81, 81)},
	{Name: "sound_looping_stop", Return: tp.Void, Params: []Param{p(tp.LoopingSound)}, Availability: avail(641, 82, 82)},
	{Name: "sound_class_set_gain", Return: tp.Void, Params: []Param{upper(tp.String), p(tp.Real), p(tp.Short)}, Availability: mccOnly(642)},

	// cinematics
	{Name: "cinematic_start", Return: tp.Void, Availability: avail(643, 90, 90)},
	{Name: "cinematic_stop", Return: tp.Void, Availability: avail(644, 91, 91)},
	{Name: "fade_in", Return: tp.Void, Params: []Param{p(tp.Real), p(tp.Real), p(tp.Real), p(tp.Short)}, Availability: avail(645, 92, 92)},
	{Name: "fade_out", Return: tp.Void, Params: []Param{p(tp.Real), p(tp.Real), p(tp.Real), p(tp.Short)}, Availability: avail(646, 93, 93)},
	{Name: "show_hud_timer", Return: tp.Void, Params: []Param{p(tp.Boolean)}, Availability: avail(647, 94, 94)},
	{Name: "hud_set_timer_position", Return: tp.Void, Params: []Param{p(tp.Short), p(tp.Short), p(tp.HudCorner)}, Availability: avail(648, 95, 95)},

	// dedicated server, absent on xbox
	{Name: "sv_say", Return: tp.Void, Params: []Param{upper(tp.String)}, Availability: pcOnly(649, 100)},
	{Name: "sv_map_next", Return: tp.Void, Availability: pcOnly(650, 101)},
}

var engineGlobals = []*Global{
	{Name: "developer_mode", Type: tp.Short, Availability: avail(0, 0, 0)},
	{Name: "debug_objects", Type: tp.Boolean, Availability: avail(1, 1, 1)},
	{Name: "rasterizer_wireframe", Type: tp.Boolean, Availability: avail(2, 2, 2)},
	{Name: "radio_debug_sounds", Type: tp.Boolean, Availability: avail(3, 3, 3)},
	{Name: "game_paused", Type: tp.Boolean, Availability: avail(4, 4, 4)},
	{Name: "sv_maxplayers", Type: tp.Short, Availability: pcOnly(5, 5)},
	{Name: "precache_map_budget", Type: tp.Long, Availability: mccOnly(6)},
}

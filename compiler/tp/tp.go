package tp

import "strings"

type (
	// ValueType is the static type of an expression node, a global, a
	// builtin parameter or a script return value.
	//
	// The numeric value of each constant is the identifier the engine
	// stores in its on-disk script format, so the order must not change.
	ValueType uint16

	// ScriptType determines how the engine invokes a script.
	ScriptType uint16
)

const (
	Unparsed ValueType = iota
	SpecialForm
	FunctionName
	Passthrough
	Void
	Boolean
	Real
	Short
	Long
	String
	Script
	TriggerVolume
	CutsceneFlag
	CutsceneCameraPoint
	CutsceneTitle
	CutsceneRecording
	DeviceGroup
	Ai
	AiCommandList
	StartingProfile
	Conversation
	Navpoint
	HudMessage
	ObjectList
	Sound
	Effect
	Damage
	LoopingSound
	AnimationGraph
	ActorVariant
	DamageEffect
	ObjectDefinition
	GameDifficulty
	Team
	AiDefaultState
	ActorType
	HudCorner
	Object
	Unit
	Vehicle
	Weapon
	Device
	Scenery
	ObjectName
	UnitName
	VehicleName
	WeaponName
	DeviceName
	SceneryName
)

const (
	Startup ScriptType = iota
	Dormant
	Continuous
	Static
	Stub
)

var valueTypeNames = [...]string{
	Unparsed:            "unparsed",
	SpecialForm:         "special form",
	FunctionName:        "function name",
	Passthrough:         "passthrough",
	Void:                "void",
	Boolean:             "boolean",
	Real:                "real",
	Short:               "short",
	Long:                "long",
	String:              "string",
	Script:              "script",
	TriggerVolume:       "trigger volume",
	CutsceneFlag:        "cutscene flag",
	CutsceneCameraPoint: "cutscene camera point",
	CutsceneTitle:       "cutscene title",
	CutsceneRecording:   "cutscene recording",
	DeviceGroup:         "device group",
	Ai:                  "ai",
	AiCommandList:       "ai command list",
	StartingProfile:     "starting profile",
	Conversation:        "conversation",
	Navpoint:            "navpoint",
	HudMessage:          "hud message",
	ObjectList:          "object list",
	Sound:               "sound",
	Effect:              "effect",
	Damage:              "damage",
	LoopingSound:        "looping sound",
	AnimationGraph:      "animation graph",
	ActorVariant:        "actor variant",
	DamageEffect:        "damage effect",
	ObjectDefinition:    "object definition",
	GameDifficulty:      "game difficulty",
	Team:                "team",
	AiDefaultState:      "ai default state",
	ActorType:           "actor type",
	HudCorner:           "hud corner",
	Object:              "object",
	Unit:                "unit",
	Vehicle:             "vehicle",
	Weapon:              "weapon",
	Device:              "device",
	Scenery:             "scenery",
	ObjectName:          "object name",
	UnitName:            "unit name",
	VehicleName:         "vehicle name",
	WeaponName:          "weapon name",
	DeviceName:          "device name",
	SceneryName:         "scenery name",
}

// valueTypeSpellings maps the underscore spellings used in source text to
// value types. Unparsed, SpecialForm and FunctionName are compiler-internal
// and cannot be spelled.
var valueTypeSpellings = map[string]ValueType{
	"passthrough":           Passthrough,
	"void":                  Void,
	"boolean":               Boolean,
	"real":                  Real,
	"short":                 Short,
	"long":                  Long,
	"string":                String,
	"script":                Script,
	"trigger_volume":        TriggerVolume,
	"cutscene_flag":         CutsceneFlag,
	"cutscene_camera_point": CutsceneCameraPoint,
	"cutscene_title":        CutsceneTitle,
	"cutscene_recording":    CutsceneRecording,
	"device_group":          DeviceGroup,
	"ai":                    Ai,
	"ai_command_list":       AiCommandList,
	"starting_profile":      StartingProfile,
	"conversation":          Conversation,
	"navpoint":              Navpoint,
	"hud_message":           HudMessage,
	"object_list":           ObjectList,
	"sound":                 Sound,
	"effect":                Effect,
	"damage":                Damage,
	"looping_sound":         LoopingSound,
	"animation_graph":       AnimationGraph,
	"actor_variant":         ActorVariant,
	"damage_effect":         DamageEffect,
	"object_definition":     ObjectDefinition,
	"game_difficulty":       GameDifficulty,
	"team":                  Team,
	"ai_default_state":      AiDefaultState,
	"actor_type":            ActorType,
	"hud_corner":            HudCorner,
	"object":                Object,
	"unit":                  Unit,
	"vehicle":               Vehicle,
	"weapon":                Weapon,
	"device":                Device,
	"scenery":               Scenery,
	"object_name":           ObjectName,
	"unit_name":             UnitName,
	"vehicle_name":          VehicleName,
	"weapon_name":           WeaponName,
	"device_name":           DeviceName,
	"scenery_name":          SceneryName,
}

// ancestors is the closed subtype lattice of the engine object types. The
// set of engine types is fixed per engine generation, so a lookup table
// beats any open dispatch here.
var ancestors = map[ValueType][]ValueType{
	Unit:        {Object},
	Vehicle:     {Unit, Object},
	Weapon:      {Object},
	Device:      {Object},
	Scenery:     {Object},
	ObjectName:  {Object},
	UnitName:    {Unit, ObjectName, Object},
	VehicleName: {Vehicle, Unit, ObjectName, Object},
	WeaponName:  {Weapon, ObjectName, Object},
	DeviceName:  {Device, ObjectName, Object},
	SceneryName: {Scenery, ObjectName, Object},
}

func (v ValueType) String() string {
	if int(v) < len(valueTypeNames) {
		return valueTypeNames[v]
	}

	return "unparsed"
}

// Spelling returns the underscore form of the type name as written in
// source text.
func (v ValueType) Spelling() string {
	return strings.ReplaceAll(v.String(), " ", "_")
}

// FromSpelling resolves the underscore spelling of a value type as written
// in script source.
func FromSpelling(s string) (ValueType, bool) {
	v, ok := valueTypeSpellings[s]
	return v, ok
}

// Ancestors returns the supertypes of v in subtype order, or nil for types
// outside the object lattice.
func (v ValueType) Ancestors() []ValueType {
	return ancestors[v]
}

// Numeric reports whether v takes part in numeric widening.
func (v ValueType) Numeric() bool {
	return v == Short || v == Long || v == Real
}

// ConvertibleTo reports whether a value of type v is accepted where typ is
// expected. Permitted conversions are: identity, anything to Void (the
// value is discarded), anything to Passthrough (checked at the use site),
// numeric widening Short -> Long -> Real, and walking up the object
// lattice.
func (v ValueType) ConvertibleTo(typ ValueType) bool {
	if v == typ || typ == Void || typ == Passthrough {
		return true
	}

	switch {
	case v == Short && (typ == Long || typ == Real):
		return true
	case v == Long && typ == Real:
		return true
	}

	for _, a := range ancestors[v] {
		if a == typ {
			return true
		}
	}

	return false
}

var scriptTypeNames = [...]string{
	Startup:    "startup",
	Dormant:    "dormant",
	Continuous: "continuous",
	Static:     "static",
	Stub:       "stub",
}

func (s ScriptType) String() string {
	if int(s) < len(scriptTypeNames) {
		return scriptTypeNames[s]
	}

	return "static"
}

// ScriptTypeFromSpelling resolves a script type spelling from source text.
func ScriptTypeFromSpelling(s string) (ScriptType, bool) {
	for i, n := range scriptTypeNames {
		if n == s {
			return ScriptType(i), true
		}
	}

	return 0, false
}

// AlwaysReturnsVoid reports whether scripts of this type have no declared
// return type in source.
func (s ScriptType) AlwaysReturnsVoid() bool {
	return s != Static && s != Stub
}

// Package script loads voyage storylines written in Lua.
//
// A storyline script builds a Voyage through method calls on a userdata
// value and returns it. The script only describes steps; nothing executes
// until the runner walks them, so loading a script has no effect on the
// world. A default storyline ships embedded in the binary.
package script

import (
	_ "embed"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const voyageTypeName = "voyage"

//go:embed voyage.lua
var defaultVoyage string

// Voyage is an ordered storyline: a name and the steps to perform.
type Voyage struct {
	Name  string
	Steps []Step
}

// Step is one storyline instruction. Args carries the kind-specific
// fields decoded from the Lua call.
type Step struct {
	Kind string
	Args map[string]any
}

// Load reads a voyage script from a file.
func Load(path string) (*Voyage, error) {
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return run(fallback, func(state *lua.State) error {
		return lua.LoadFile(state, path, "")
	})
}

// LoadDefault loads the embedded storyline.
func LoadDefault() (*Voyage, error) {
	return run("voyage", func(state *lua.State) error {
		return lua.LoadBuffer(state, defaultVoyage, "voyage.lua", "")
	})
}

func run(fallbackName string, load func(*lua.State) error) (*Voyage, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerVoyageType(state)
	registerVoyageConstructor(state)

	if err := load(state); err != nil {
		return nil, fmt.Errorf("load voyage script: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run voyage script: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("voyage script must return a Voyage")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	voyage, ok := ud.(*Voyage)
	if !ok || voyage == nil {
		return nil, fmt.Errorf("voyage script returned an invalid Voyage")
	}
	if strings.TrimSpace(voyage.Name) == "" {
		voyage.Name = fallbackName
	}
	return voyage, nil
}

func registerVoyageType(state *lua.State) {
	lua.NewMetaTable(state, voyageTypeName)
	state.NewTable()
	lua.SetFunctions(state, voyageMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerVoyageConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, voyageConstructor, 0)
	state.SetGlobal("Voyage")
}

var voyageConstructor = []lua.RegistryFunction{
	{Name: "new", Function: voyageNew},
}

func voyageNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	voyage := &Voyage{Name: name}
	state.PushUserData(voyage)
	lua.SetMetaTableNamed(state, voyageTypeName)
	return 1
}

var voyageMethods = []lua.RegistryFunction{
	{Name: "scene", Function: voyageScene},
	{Name: "narrate", Function: voyageNarrate},
	{Name: "travel", Function: voyageTravel},
	{Name: "gather", Function: voyageGather},
	{Name: "auto_harvest", Function: voyageAutoHarvest},
	{Name: "fight", Function: voyageFight},
	{Name: "craft", Function: voyageCraft},
	{Name: "activate", Function: voyageActivate},
	{Name: "commission", Function: voyageCommission},
	{Name: "refit", Function: voyageRefit},
	{Name: "move", Function: voyageMove},
	{Name: "status", Function: voyageStatus},
	{Name: "objective", Function: voyageObjective},
	{Name: "journal", Function: voyageJournal},
}

func voyageScene(state *lua.State) int {
	voyage := checkVoyage(state)
	title := lua.CheckString(state, 2)
	text := lua.OptString(state, 3, "")
	appendStep(voyage, "scene", map[string]any{"title": title, "text": text})
	return 0
}

func voyageNarrate(state *lua.State) int {
	voyage := checkVoyage(state)
	text := lua.CheckString(state, 2)
	appendStep(voyage, "narrate", map[string]any{"text": text})
	return 0
}

func voyageTravel(state *lua.State) int {
	voyage := checkVoyage(state)
	region := lua.CheckString(state, 2)
	appendStep(voyage, "travel", map[string]any{"region": region})
	return 0
}

func voyageGather(state *lua.State) int {
	voyage := checkVoyage(state)
	resource := lua.CheckString(state, 2)
	appendStep(voyage, "gather", map[string]any{"resource": resource})
	return 0
}

func voyageAutoHarvest(state *lua.State) int {
	voyage := checkVoyage(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(voyage, "auto_harvest", tableToMap(state, 2))
	return 0
}

func voyageFight(state *lua.State) int {
	voyage := checkVoyage(state)
	enemy := lua.CheckString(state, 2)
	appendStep(voyage, "fight", map[string]any{"enemy": enemy})
	return 0
}

// voyageCraft accepts either an item name or a table, so scripts can mark
// a craft as required for the storyline to continue.
func voyageCraft(state *lua.State) int {
	voyage := checkVoyage(state)
	if state.TypeOf(2) == lua.TypeString {
		item := lua.CheckString(state, 2)
		appendStep(voyage, "craft", map[string]any{"item": item})
		return 0
	}
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(voyage, "craft", tableToMap(state, 2))
	return 0
}

func voyageActivate(state *lua.State) int {
	voyage := checkVoyage(state)
	sanctuary := lua.CheckString(state, 2)
	appendStep(voyage, "activate", map[string]any{"sanctuary": sanctuary})
	return 0
}

func voyageCommission(state *lua.State) int {
	voyage := checkVoyage(state)
	appendStep(voyage, "commission", optionalTable(state, 2))
	return 0
}

func voyageRefit(state *lua.State) int {
	voyage := checkVoyage(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(voyage, "refit", tableToMap(state, 2))
	return 0
}

func voyageMove(state *lua.State) int {
	voyage := checkVoyage(state)
	lua.CheckType(state, 2, lua.TypeTable)
	appendStep(voyage, "move", tableToMap(state, 2))
	return 0
}

func voyageStatus(state *lua.State) int {
	voyage := checkVoyage(state)
	appendStep(voyage, "status", nil)
	return 0
}

func voyageObjective(state *lua.State) int {
	voyage := checkVoyage(state)
	appendStep(voyage, "objective", nil)
	return 0
}

func voyageJournal(state *lua.State) int {
	voyage := checkVoyage(state)
	last := lua.OptInteger(state, 2, 0)
	appendStep(voyage, "journal", map[string]any{"last": last})
	return 0
}

func checkVoyage(state *lua.State) *Voyage {
	ud := lua.CheckUserData(state, 1, voyageTypeName)
	if voyage, ok := ud.(*Voyage); ok && voyage != nil {
		return voyage
	}
	lua.ArgumentError(state, 1, "voyage expected")
	return nil
}

func appendStep(voyage *Voyage, kind string, data map[string]any) {
	if voyage == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	voyage.Steps = append(voyage.Steps, Step{Kind: kind, Args: data})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}

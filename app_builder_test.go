package corridor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockModule struct {
	installed bool
	order     *[]string
	name      string
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
}

func TestAppBuilder_Stateless(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.False(t, app.stateful)
	assert.Equal(t, State(0), app.initialState)
	assert.Equal(t, State(0), app.finalState)
}

func TestAppBuilder_UseStates(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 10).Build()

	assert.True(t, app.stateful)
	assert.Equal(t, State(1), app.initialState)
	assert.Equal(t, State(10), app.finalState)
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseModule(&MockModule{})

	assert.Len(t, builder.modules, 1)
}

func TestAppBuilder_Build_WithModules(t *testing.T) {
	module := &MockModule{}
	NewAppBuilder().UseModule(module).Build()

	assert.True(t, module.installed)
}

func TestAppBuilder_Build_InstallsInOrder(t *testing.T) {
	var order []string
	module1 := &MockModule{order: &order, name: "first"}
	module2 := &MockModule{order: &order, name: "second"}

	builder := NewAppBuilder()
	builder.UseModule(module1)
	builder.UseModule(module2)
	builder.Build()

	assert.Len(t, builder.modules, 2)
	assert.True(t, module1.installed)
	assert.True(t, module2.installed)
	assert.Equal(t, []string{"first", "second"}, order)
}

package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommandValidate(t *testing.T) {
	for _, a := range []Action{ActionDrive, ActionTurnLeft, ActionTurnRight, ActionStop, ActionSequence} {
		assert.NoError(t, Command{Action: a}.Validate(), string(a))
	}
	assert.True(t, IsValidation(Command{Action: ActionPause}.Validate()))
	assert.True(t, IsValidation(Command{}.Validate()))
}

func TestCommandValidateRange(t *testing.T) {
	valid := []Command{
		{Action: ActionDrive, Speed: -100, Direction: 100},
		{Action: ActionDrive, Speed: 100, Direction: -100},
		{Action: ActionTurnLeft, Speed: 100},
		{Action: ActionTurnRight, Speed: 0},
	}
	for _, c := range valid {
		assert.NoError(t, c.Validate(), "%+v", c)
	}
	invalid := []Command{
		{Action: ActionDrive, Speed: 150, Direction: 500},
		{Action: ActionDrive, Speed: 50, Direction: -101},
		{Action: ActionDrive, Speed: -100.5},
		{Action: ActionDrive, Speed: math.NaN()},
		{Action: ActionTurnLeft, Speed: -40},
		{Action: ActionTurnRight, Speed: 101},
	}
	for _, c := range invalid {
		assert.True(t, IsValidation(c.Validate()), "%+v", c)
	}
	step := SequenceStep{Command: Command{Action: ActionTurnLeft, Speed: -40}}
	assert.True(t, IsValidation(step.Validate()))
}

func TestDefaultSequence(t *testing.T) {
	steps := DefaultSequence()
	for _, s := range steps {
		assert.NoError(t, s.Validate())
	}
	assert.Equal(t, ActionTurnLeft, steps[0].Action)
	assert.Equal(t, 100.0, steps[0].Speed)
	assert.Equal(t, time.Second, steps[1].Duration)
	assert.Equal(t, Command{Action: ActionDrive, Speed: -80}, steps[2].Command)
	assert.Equal(t, ActionStop, steps[len(steps)-1].Action)
}

func TestMQTTConfig(t *testing.T) {
	var nilConfig *MQTTConfig
	assert.True(t, nilConfig.IsEmpty())
	assert.True(t, (&MQTTConfig{}).IsEmpty())

	c := MQTTConfig{Host: "broker"}
	assert.False(t, c.IsEmpty())
	assert.Equal(t, "tcp://broker:1883", c.BrokerURL())
	assert.Equal(t, "/binky/l298/", c.GetTopicPrefix())
	assert.Equal(t, "l298-worker-commands", c.GetClientID("commands"))

	c = MQTTConfig{Host: "broker", Port: 1884, ClientID: "robot", TopicPrefix: "/x"}
	assert.Equal(t, "tcp://broker:1884", c.BrokerURL())
	assert.Equal(t, "/x/", c.GetTopicPrefix())
	assert.Equal(t, "robot-pwm", c.GetClientID("pwm"))
	assert.True(t, IsValidation(MQTTConfig{Host: "broker", Port: 70000}.Validate()))
}

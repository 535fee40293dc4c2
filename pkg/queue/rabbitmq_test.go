package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskPriority(t *testing.T) {
	assert.Equal(t, uint8(1), TaskPriority(map[string]interface{}{}))
	assert.Equal(t, uint8(4), TaskPriority(map[string]interface{}{"priority": 4}))
	assert.Equal(t, uint8(7), TaskPriority(map[string]interface{}{"priority": float64(7)}))
	assert.Equal(t, uint8(10), TaskPriority(map[string]interface{}{"priority": 42}))
	assert.Equal(t, uint8(0), TaskPriority(map[string]interface{}{"priority": -3}))
	assert.Equal(t, uint8(1), TaskPriority(map[string]interface{}{"priority": "high"}))
}

func TestPublishNotificationTask_RequiresType(t *testing.T) {
	c := &Client{}
	err := c.PublishNotificationTask(map[string]interface{}{"user_id": "u-1"})
	assert.Error(t, err)
}

package nlu

import "fmt"

// analysisPrompt builds the few-shot instruction that constrains Gemini to
// the closed intent set and the JSON output shape.
func analysisPrompt(message string) string {
	return fmt.Sprintf(`You are an assistant that interprets task-management requests.
Classify the user's message into exactly one intent and, when the message
refers to a specific task, extract that task's name.

Intents:
- "create_task": the user wants a new task. Extract the task name.
- "complete_task": the user finished a task. Extract the task name.
- "mark_in_progress": the user is working on a task. Extract the task name.
- "delete_task": the user wants a task removed. Extract the task name.
- "list_tasks": the user wants to see their tasks.
- "greeting": the user is saying hello.
- "thanks": the user is expressing gratitude.
- "unknown": anything else.

If no specific task can be identified, set "task_name" to null.

Respond with JSON only:
{"intent": "<intent>", "task_name": "<name or null>"}

Examples:

User: "Necesito una tarea para lavar los platos mañana"
Output: {"intent": "create_task", "task_name": "lavar los platos"}

User: "Ya terminé de comprar víveres"
Output: {"intent": "complete_task", "task_name": "comprar víveres"}

User: "Voy a lavar el perro"
Output: {"intent": "mark_in_progress", "task_name": "lavar el perro"}

User: "Podrías borrar la tarea de llamar al doctor"
Output: {"intent": "delete_task", "task_name": "llamar al doctor"}

User: "Cuáles son mis tareas?"
Output: {"intent": "list_tasks", "task_name": null}

User: "Hola, ¿cómo estás?"
Output: {"intent": "greeting", "task_name": null}

User: "Gracias"
Output: {"intent": "thanks", "task_name": null}

User: "Crea la taea nueva paa e prycto"
Output: {"intent": "create_task", "task_name": "crear la tarea nueva para el proyecto"}

---
Now analyze this message:
%s`, message)
}

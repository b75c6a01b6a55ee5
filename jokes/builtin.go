package jokes

var builtin = map[string]map[string][]string{
	"en": {
		CategoryNeutral: {
			"There are only 10 kinds of people in this world: those who know binary and those who don't.",
			"A SQL query goes into a bar, walks up to two tables and asks, 'Can I join you?'",
			"Why do programmers always mix up Halloween and Christmas? Because Oct 31 == Dec 25.",
			"I would tell you a UDP joke, but you might not get it.",
			"How many programmers does it take to change a light bulb? None, that's a hardware problem.",
			"Debugging: removing the needles from the haystack.",
		},
		CategoryChuck: {
			"Chuck Norris writes code that optimizes itself.",
			"Chuck Norris can compile syntax errors.",
			"Chuck Norris doesn't need garbage collection because he doesn't call .Dispose(), he calls .DropKick().",
			"Chuck Norris's keyboard doesn't have a Ctrl key because nothing controls Chuck Norris.",
			"When Chuck Norris throws an exception, it's across the room.",
		},
	},
	"de": {
		CategoryNeutral: {
			"Es gibt nur 10 Arten von Menschen: die, die Binär verstehen, und die, die es nicht tun.",
			"Warum verwechseln Programmierer Halloween mit Weihnachten? Weil Oct 31 == Dec 25.",
			"Ein Programmierer geht einkaufen. Seine Frau sagt: Bring ein Brot mit, und wenn es Eier gibt, bring sechs. Er kommt mit sechs Broten zurück.",
			"Wie viele Programmierer braucht man, um eine Glühbirne zu wechseln? Keinen, das ist ein Hardwareproblem.",
		},
		CategoryChuck: {
			"Chuck Norris kann Syntaxfehler kompilieren.",
			"Chuck Norris schreibt Code, der sich selbst optimiert.",
			"Chuck Norris' Tastatur hat keine Strg-Taste, denn niemand kontrolliert Chuck Norris.",
		},
	},
	"es": {
		CategoryNeutral: {
			"Hay 10 tipos de personas en el mundo: las que entienden binario y las que no.",
			"¿Por qué los programadores confunden Halloween con Navidad? Porque Oct 31 == Dec 25.",
			"¿Cuántos programadores hacen falta para cambiar una bombilla? Ninguno, es un problema de hardware.",
			"Una consulta SQL entra en un bar, se acerca a dos tablas y pregunta: ¿puedo unirme?",
		},
		CategoryChuck: {
			"Chuck Norris puede compilar errores de sintaxis.",
			"Chuck Norris escribe código que se optimiza solo.",
			"Cuando Chuck Norris lanza una excepción, cruza la habitación.",
		},
	},
	"fr": {
		CategoryNeutral: {
			"Il y a 10 types de personnes dans le monde : celles qui comprennent le binaire et les autres.",
			"Pourquoi les programmeurs confondent Halloween et Noël ? Parce que Oct 31 == Dec 25.",
			"Combien de programmeurs faut-il pour changer une ampoule ? Aucun, c'est un problème matériel.",
			"Une requête SQL entre dans un bar, s'approche de deux tables et demande : je peux me joindre à vous ?",
		},
		CategoryChuck: {
			"Chuck Norris peut compiler des erreurs de syntaxe.",
			"Chuck Norris écrit du code qui s'optimise tout seul.",
			"Le clavier de Chuck Norris n'a pas de touche Ctrl, car rien ne contrôle Chuck Norris.",
		},
	},
}

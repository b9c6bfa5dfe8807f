package command

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tbran/voltbot/internal/rank"
)

// randIntn is swappable for deterministic tests.
var randIntn = rand.Intn

// Builtins assembles the default command set. fetch backs the custom
// command's pastebin support and may be nil.
func Builtins(fetch Fetcher) (*Registry, error) {
	formats, err := LoadTourFormats()
	if err != nil {
		return nil, fmt.Errorf("load tour formats: %w", err)
	}

	r := NewRegistry()
	r.Register("commands", commandsCommand)
	r.Register("git", gitCommand)
	r.Register("say", sayCommand)
	r.Register("joke", jokeCommand)
	r.Register("insult", insultCommand)
	r.Register("notice", noticeCommand)
	r.Register("uno", unoCommand)
	r.Register("mish", mishCommand)
	r.Register("blog", blogCommand)
	r.Register("epic", epicCommand)
	r.Register("nom", nomCommand)
	r.Register("delet", deletCommand)
	r.Register("b", bCommand)
	r.Register("usage", usageCommand)
	r.Register("tour", formats.Command())
	r.Register("custom", customCommand(fetch))
	r.Register("objectively", objectivelyCommand)
	r.Register("chef", chefCommand)
	r.Register("conics", conicsCommand)
	r.Register("platypus", platypusCommand)
	r.Register("quagsire", quagsireCommand)
	r.Register("diglett", diglettCommand)
	r.Register("thinking", emojiBoxCommand(thinkingImage))
	r.Register("genius", emojiBoxCommand(geniusImage))
	r.Register("ungenius", emojiBoxCommand(ungeniusImage))
	r.Register("sunglasses", emojiBoxCommand(sunglassesImage))
	r.Register("tympole", emojiBoxCommand(tympoleImage))
	r.Register("bacon", baconCommand)

	aliases := map[string]string{
		"about":     "commands",
		"guide":     "commands",
		"help":      "commands",
		"tell":      "say",
		"usgae":     "usage",
		"objective": "objectively",
		"sire":      "quagsire",
	}
	for alias, canonical := range aliases {
		if err := r.Alias(alias, canonical); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func commandsCommand(ctx Ctx, arg, by, room string) {
	if guide := ctx.Guide(); guide != "" {
		ctx.Say(room, "A guide on how to use "+ctx.Nick()+" can be found here: "+guide)
		return
	}
	owner := "the bot owner"
	if owners := ctx.Owners(); len(owners) > 0 {
		owner = owners[0]
	}
	ctx.Say(room, "There is no guide for this bot. PM the owner, "+owner+", with any questions.")
}

func gitCommand(ctx Ctx, arg, by, room string) {
	if git := ctx.GitURL(); git != "" {
		ctx.Say(room, "Source code for "+ctx.Nick()+": "+git)
		return
	}
	ctx.Say(room, "There is no public source code for "+ctx.Nick()+".")
}

// stripCommands defangs chat commands so say can only produce plain text.
// A leading slash is doubled, which the server renders literally, and a
// leading bang is padded with a space.
func stripCommands(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "/"):
		return "/" + text
	case strings.HasPrefix(text, "!"):
		return " " + text
	default:
		return text
	}
}

func sayCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, stripCommands(arg))
}

var jokes = []string{
	"What's the difference between a jeweler and a jailor? One sells watches, and the other watches cells!",
	"Why do seagulls fly over the sea? Because if they flew over the bay, they'd be bagels!",
	"Why did the invisible man turn down the job offer? He couldn't see himself doing it.",
	"What do prisoners use to call each other? Cell phones!",
	"What do you call a bee that can't make up its mind? A maybe!",
	"What do you call a bee that lives in America? A USB!",
	"Why did the partially blind man fall down the well? Because he couldn't see that well.",
	"Where do ants go when it's hot outside? **Ant**arctica!",
	"What do you call a chicken that calculates how to cross the road? A mathemachicken!",
	"Why did the sun not go to college? It already had three million degrees!",
	"What's the difference between a diameter and a radius? A radius!",
	"What did the scientist say when he found two isotopes of helium? HeHe",
	"What's a frog's favorite drink? Diet croak!",
	"I'd tell you a Fibonacci joke, but it's probably as bad as the last two you've heard combined.",
	"Why don't Americans switch from using pounds to kilograms? Because there'd be a mass confusion.",
	"What do you call two friends who both like math? Algebros!",
	"Why is justice best served cold? Because if it was served warm, it would be just water!",
	"How much does it cost for a pirate to get their ears pierced? A buccaneer!",
	"The minus button on my calculator is broken. On the plus side, it works.",
	"Gravity is one of the fundamental forces in the universe. If you removed it, you'd get gravy.",
	"What is the loudest pet? A trum**pet**!",
	"What's the best way to make a pirate angry? Remove the p!",
	"Where do you take a boat when it gets sick? To the doc!",
	"What's the best time to buy a bird? When it's going cheep!",
	"Why was the tennis club's website down? They had problems with their server.",
}

func jokeCommand(ctx Ctx, arg, by, room string) {
	num := -1
	switch {
	case arg == "":
		num = randIntn(len(jokes))
	case arg == "latest":
		num = len(jokes) - 1
	default:
		if n, err := strconv.Atoi(arg); err == nil {
			num = n
		}
	}
	if num < 0 || num >= len(jokes) {
		ctx.Send("|/pm " + rank.ToID(by) + ", You entered an invalid joke number, probably. Valid joke numbers are 0-" + strconv.Itoa(len(jokes)-1) + ".")
		ctx.Say(room, "le epic funny joke.")
		return
	}
	ctx.Say(room, jokes[num])
}

var nonASCII = regexp.MustCompile(`[^\x00-\x7F]`)

var insultTemplates = []string{
	"%s is the reason we have to put instructions on shampoo.",
	"Roses are red, violets are blue. If %s was a Pokemon, I wouldn't choose you.",
	"%s uses the word objectively to describe subjective things.",
	"They say opposites attract. I hope %s meets someone who is good-looking, intelligent, and cultured.",
	"%s's social life is as exciting as the derivative of e^^x^^.",
	"The intersection of %s's brain and reality is the null set.",
	"Trying to understand %s's teambuilding decisions is more complex than solving the P vs. NP problem.",
	"%s is the type of person who stares at a can of orange juice because it says \"concentrate\".",
	"%s would struggle to pour water out of a boot with the directions on the heel.",
	"%s has Van Gogh's ear for music.",
	"How many of %s does it take to change a lightbulb? Just one - all they have to do is hold the lightbulb in place while the world revolves around them.",
}

// insultCommand roasts the named target. The bot, its owners and targets
// smuggling non-ASCII lookalike characters get bounced back onto the
// sender.
func insultCommand(ctx Ctx, arg, by, room string) {
	args := strings.Split(arg, ",")
	target := strings.TrimSpace(args[0])

	immune := rank.ToID(target) == rank.ToID(ctx.Nick()) || nonASCII.MatchString(target)
	for _, owner := range ctx.Owners() {
		if strings.Contains(rank.ToID(target), rank.ToID(owner)) {
			immune = true
			break
		}
	}
	if immune || target == "" {
		target = strings.TrimPrefix(rank.TrimStatus(by), string(rank.Symbol(by)))
	}

	num := -1
	if len(args) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(args[1])); err == nil {
			num = n
		} else {
			num = len(insultTemplates)
		}
	} else {
		num = randIntn(len(insultTemplates))
	}
	if num < 0 || num >= len(insultTemplates) {
		ctx.Send("|/pm " + rank.ToID(by) + ", You entered an invalid insult number, probably. Valid insult numbers are 0-" + strconv.Itoa(len(insultTemplates)-1) + ".")
		ctx.Say(room, target+" is bad and should feel bad.")
		return
	}
	ctx.Say(room, fmt.Sprintf(insultTemplates[num], target))
}

func noticeCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "/wall Please note that "+ctx.Nick()+" may be tweaked periodically. Please be patient if a tour is canceled; it's probably just to test something.")
}

func unoCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "/uno create 10")
	ctx.Say(room, "/uno autostart 30")
	timer := 10
	if rank.ToID(by) == "dingram" {
		timer = 5
	}
	ctx.Say(room, "/uno timer "+strconv.Itoa(timer))
}

const mishImage = `<img src="https://images-ext-1.discordapp.net/external/jZ8e-Lcp6p2-GZb8DeeyShSvxT2ghTDz7nLMX8c1SKs/https/cdn.discordapp.com/attachments/320922154092986378/410460728999411712/getmished.png?width=260&height=300" height=300 width=260>`

func mishCommand(ctx Ctx, arg, by, room string) {
	if rank.ToID(room) == rank.ToID(ctx.MainRoom()) {
		return
	}
	ctx.Say(room, "mish mish")
	if randIntn(10) == 1 {
		ctx.Say(room, "/addhtmlbox "+mishImage)
	}
}

func blogCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "/addhtmlbox <a href='https://spo.ink/ansena'>ansena's blog</a>")
}

func epicCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "gaming")
}

func nomCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "Player not recognized. Perhaps you meant **seaco**.")
}

func deletCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, arg+" **deleted**.")
}

const bEmoji = "\U0001F171️"

func bCommand(ctx Ctx, arg, by, room string) {
	text := bEmoji
	if strings.ContainsAny(arg, "bB") {
		text = strings.NewReplacer("b", bEmoji, "B", bEmoji).Replace(arg)
	}
	if !rank.IsPM(room) {
		text = "/addhtmlbox " + text
	}
	ctx.Say(room, text)
}

const objectivelyText = `Something is "objective" when it is true independently of personal feelings or opinions, instead based on hard facts. For example, Flamethrower objectively has higher accuracy than Fire Blast, and Fire Blast objectively has a higher Base Power than Flamethrower. ` +
	"<br><br> " +
	`Subjective refers to personal preferences, opinions, or feelings. Anything subjective is subject to interpretation. For example, you might think Flamethrower is better than Fire Blast, but another player might think Fire Blast is better; the opinion is subjective. ` +
	"<br><br> " +
	`That's not to say opinions are bad! It's also ok to put forth reasoning into your opinions and defend them. It's not correct, however, to say some opinion you have is objectively true.`

func objectivelyCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "/addhtmlbox "+objectivelyText)
}

func chefCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "!dt sheer cold")
}

func conicsCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "!dt mudkip")
}

const platypusBox = `<center>` +
	`<img src="https://i.ibb.co/ws6dDYg/rsz-platypus-png.png" class="fa fa-spin" width="100" height="100">` +
	` <a href="https://youtu.be/VaNbDYGmGwc" style="font-size: 20px;">Platypus on the Prowl</a> ` +
	`<img src="https://i.ibb.co/ws6dDYg/rsz-platypus-png.png" class="fa fa-spin" width="100" height="100">` +
	`<br><br>` +
	`<img src="https://cdn.discordapp.com/attachments/394481120806305794/506966120482209792/platyprowl.gif" height="175" width="170">` +
	`</center>`

func platypusCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "/addhtmlbox "+platypusBox)
}

const quagsireGif = `https://play.pokemonshowdown.com/sprites/ani/quagsire.gif`

const quagsireBox = `<div style="width: 485px; margin: auto; margin-bottom: 5px;">` +
	`<a href="https://www.youtube.com/watch?v=buc64u6Q_oA" style="text-align: center; font-size: 200%; display: block; color: black; border: 3px solid black; margin: auto; border-radius: 10px; background-color: #a4d1e8; padding: 5px 0;">` +
	`<psicon pokemon="wooper"> <strong>Acquire the Sire</strong> <psicon pokemon="wooper">` +
	`</a></div>` +
	`<div style="width: 485px; margin: auto;">` +
	`<div style="display: inline-block; vertical-align: 50%; padding-right: 10px;">` +
	`<img src="` + quagsireGif + `" width="48" height="77" style="transform: scaleX(-1); display: block; padding-bottom: 20px;">` +
	`<img src="` + quagsireGif + `" width="48" height="77" style="transform: scaleX(-1); display: block;">` +
	`</div>` +
	`<div style="display: inline-block;">` +
	`<a href="https://www.youtube.com/watch?v=buc64u6Q_oA"><img src="https://cdn.discordapp.com/attachments/656292565242347520/749657145305202748/acquirethesire.gif" width="360" height="202"></a>` +
	`</div>` +
	`<div style="display: inline-block; vertical-align: 50%; padding-left: 10px;">` +
	`<img src="` + quagsireGif + `" width="48" height="77" style="display: block; padding-bottom: 20px;">` +
	`<img class="fa fa-spin" src="` + quagsireGif + `" width="48" height="77" style="display: block;">` +
	`</div></div>`

func quagsireCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, "/addhtmlbox "+quagsireBox)
}

// digletters spells D I G L E T T as regional-indicator emoji images.
var digletters = []string{"1f1e9", "1f1ee", "1f1ec", "1f1f1", "1f1ea", "1f1f9", "1f1f9"}

func diglettCommand(ctx Ctx, arg, by, room string) {
	var b strings.Builder
	b.WriteString(`<marquee scrollamount="15">`)
	for i := 0; i < 13; i++ {
		b.WriteString(`<img src="https://play.pokemonshowdown.com/sprites/ani/diglett.gif" class="fa fa-spin" width="43" height="35">`)
	}
	for _, letter := range digletters {
		b.WriteString(`<img src="https://images.emojiterra.com/twitter/v11/512px/` + letter + `.png" class="fa fa-spin" width="43" height="35">`)
	}
	b.WriteString(`</marquee><center><span style="font-size: 0.9em">Moves Like Diglett | Eye of the Diglett | I'll Make a Diglett Out of You</span></center>`)
	b.WriteString(`<center>Click the Diglett -&gt;`)
	for _, link := range []string{"https://youtu.be/6Zwu8i4bPV4", "https://youtu.be/8LYwT9Nf1Ic", "https://youtu.be/uzdvnB8SJV8"} {
		b.WriteString(`<a href="` + link + `"><img src="https://images-wixmp-ed30a86b8c4ca887773594c2.wixmp.com/intermediary/f/578a8319-92b6-4d81-9d5f-d6914e6535a0/d5o541m-54dae5d4-710c-44d4-a898-71ea71d7bd28.jpg" width="85" height="100"></a>`)
	}
	b.WriteString(`&lt;- Click the Diglett</center><marquee scrollamount="15">`)
	for _, letter := range digletters {
		b.WriteString(`<img src="https://images.emojiterra.com/twitter/v11/512px/` + letter + `.png" class="fa fa-spin" width="43" height="35">`)
	}
	for i := 0; i < 13; i++ {
		b.WriteString(`<img src="https://play.pokemonshowdown.com/sprites/ani-back/diglett.gif" class="fa fa-spin" width="43" height="35">`)
	}
	b.WriteString(`</marquee>`)
	ctx.Say(room, "/addhtmlbox "+b.String())
}

const (
	thinkingImage   = `<img src="https://i.imgur.com/vXbla1s.png" width=24 height=27>`
	geniusImage     = `<img src="https://cdn.discordapp.com/emojis/403682643012616202.png" width=50 height=50>`
	ungeniusImage   = `<img src="https://cdn.discordapp.com/emojis/418886687180062720.png" width=50 height=50>`
	sunglassesImage = `<img src="https://discord.com/assets/5f80f04e6ee97feebdd00feff92ced82.svg" width=50 height=50>`
	tympoleImage    = `<img src="https://cdn.discordapp.com/emojis/483997875181715456.png" width=32 height=32 style='border: 1px solid black;'>`
)

func emojiBoxCommand(image string) Handler {
	return func(ctx Ctx, arg, by, room string) {
		ctx.Say(room, "/addhtmlbox "+image)
	}
}

func baconCommand(ctx Ctx, arg, by, room string) {
	ctx.Say(room, `/addhtmlbox <img src="https://play.pokemonshowdown.com/sprites/ani-shiny/yveltal.gif" width=201 height=188>`)
}

const usageFormat = "gen8vgc2021-1760"

// usageCommand links the usage stat sources. In PMs it renders through a
// pminfobox in the main room, which the server routes back to the sender.
func usageCommand(ctx Ctx, arg, by, room string) {
	now := time.Now().UTC()
	stats := fmt.Sprintf("https://www.smogon.com/stats/%d-%02d", now.Year(), int(now.Month()))
	html := `<strong>VGC Usage Stats!</strong> <ul style="margin: 0 0 0 -20px">` +
		`<li><a href="https://vgcstats.com">VGC Stats Website</a></li>` +
		`<li><a href="` + stats + `/` + usageFormat + `.txt">Showdown Usage</a></li>` +
		`<li><a href="` + stats + `/moveset/` + usageFormat + `.txt">Showdown Detailed Usage</a></li>` +
		`<li><a href="https://babiri.net">babiri.net's Showdown Ladder Teams</a></li>` +
		`</ul>`
	if rank.IsPM(room) {
		ctx.Say(rank.ToID(ctx.MainRoom()), "/pminfobox "+rank.ToID(by)+", "+html)
		return
	}
	ctx.Say(room, "/addhtmlbox "+html)
}

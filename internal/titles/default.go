package titles

// defaultCatalogue is the built-in mapping used when no source file is
// configured.
var defaultCatalogue = []Group{
	{
		Platform: "Windows",
		Category: "Browsers",
		Entries: []Entry{
			{App: "chrome.exe", Title: "Google Chrome"},
			{App: "msedge.exe", Title: "Microsoft Edge"},
			{App: "zen.exe", Title: "Zen Browser"},
		},
	},
	{
		Platform: "Windows",
		Category: "Chat & Communication",
		Entries: []Entry{
			{App: "Discord.exe", Title: "Discord"},
			{App: "Telegram.exe", Title: "Telegram"},
			{App: "thunderbird.exe", Title: "Mozilla Thunderbird"},
			{App: "Zoom.exe", Title: "Zoom"},
		},
	},
	{
		Platform: "Windows",
		Category: "Games",
		Entries: []Entry{
			{App: "StarRail.exe", Title: "Honkai: Star Rail"},
			{App: "GenshinImpact.exe", Title: "Genshin Impact"},
			{App: "BlueArchive.exe", Title: "Blue Archive"},
			{App: "reverse1999.exe", Title: "Reverse 1999"},
			{App: "League of Legends.exe", Title: "League of Legends"},
			{App: "LeagueClientUx.exe", Title: "League Client"},
			{App: "FortniteClient-Win64-Shipping.exe", Title: "Fortnite"},
			{App: "Client-Win64-Shipping.exe", Title: "Wuthering Waves"},
			{App: "nikke.exe", Title: "Goddess of Victory: Nikke"},
			{App: "ZenlessZoneZero.exe", Title: "Zenless Zone Zero"},
			{App: "Overwatch.exe", Title: "Overwatch"},
			{App: "Risk of Rain 2.exe", Title: "Risk of Rain 2"},
			{App: "Gunfire Reborn.exe", Title: "Gunfire Reborn"},
			{App: "Hades2.exe", Title: "Hades 2"},
			{App: "VALORANT-Win64-Shipping.exe", Title: "Valorant"},
			{App: "DevilMayCry5.exe", Title: "Devil May Cry 5"},
			{App: "Risk of Rain Returns.exe", Title: "Risk of Rain Returns"},
			{App: "ItTakesTwo.exe", Title: "It Takes Two"},
			{App: "bg3_dx11.exe", Title: "Baldur's Gate 3"},
			{App: "X6Game-Win64-Shipping.exe", Title: "Infinity Nikki"},
			{App: "P3R.exe", Title: "P3Reload"},
			{App: "NineSols.exe", Title: "Nine Sols"},
			{App: "GF2_Exilium.exe", Title: "GF2 Exilium"},
			{App: "METAPHOR.exe", Title: "Metaphor Refantazio"},
			{App: "Heretics Fork.exe", Title: "Heretic's Fork"},
			{App: "BrownDust II.exe", Title: "BrownDust II"},
			{App: "r5apex_dx12.exe", Title: "Apex Legends"},
			{App: "SoTGame.exe", Title: "Sea of Thieves"},
			{App: "Balatro.exe", Title: "Balatro"},
			{App: "AWayOut.exe", Title: "A Way Out"},
			{App: "TETR.IO.exe", Title: "TETR.IO"},
			{App: "Terraria.exe", Title: "Terraria"},
			{App: "Rungore.exe", Title: "Rungore"},
			{App: "OuterWilds.exe", Title: "Outer Wilds"},
			{App: "dnplayer.exe", Title: "LDPlayer"},
			{App: "factorio.exe", Title: "Factorio"},
			{App: "SplitFiction.exe", Title: "Split Fiction"},
			{App: "Replicube.exe", Title: "Replicube"},
			{App: "MiSideFull.exe", Title: "MiSide"},
			{App: "FragPunk.exe", Title: "FragPunk"},
			{App: "20SM.exe", Title: "20 Small Mazes"},
			{App: "HYP.exe", Title: "HoyoPlay Launcher"},
			{App: "launcher_main.exe", Title: "Wuthering Waves Launcher"},
		},
	},
	{
		Platform: "Windows",
		Category: "Editors & IDEs",
		Entries: []Entry{
			{App: "Code.exe", Title: "Visual Studio Code"},
			{App: "devenv.exe", Title: "Visual Studio"},
			{App: "acad.exe", Title: "AutoCAD"},
			{App: "sai2.exe", Title: "PaintTool SAI 2"},
			{App: "Obsidian.exe", Title: "Obsidian"},
			{App: "WINWORD.EXE", Title: "Microsoft Word"},
			{App: "EXCEL.EXE", Title: "Microsoft Excel"},
			{App: "POWERPNT.EXE", Title: "Microsoft PowerPoint"},
			{App: "netbeans64.exe", Title: "NetBeans IDE"},
			{App: "MATLAB.exe", Title: "MATLAB"},
			{App: "godot.windows.opt.tools.64.exe", Title: "Godot Engine"},
			{App: "pgAdmin4.exe", Title: "pgAdmin 4"},
			{App: "xtop.exe", Title: "PTC Creo"},
		},
	},
	{
		Platform: "Windows",
		Category: "System & Utilities",
		Entries: []Entry{
			{App: "explorer.exe", Title: "File Explorer"},
			{App: "ShellExperienceHost.exe", Title: "Windows Shell Experience"},
			{App: "ApplicationFrameHost.exe", Title: "Application Frame Host"},
			{App: "SndVol.exe", Title: "Sound Volume Control"},
			{App: "VirtualBoxVM.exe", Title: "VirtualBox VM"},
			{App: "Taskmgr.exe", Title: "Task Manager"},
			{App: "dotnet.exe", Title: ".NET Core"},
			{App: "NVIDIA app.exe", Title: "NVIDIA App"},
			{App: "mintty.exe", Title: "MinTTY Terminal"},
			{App: "python.exe", Title: "Python"},
			{App: "SnippingTool.exe", Title: "Snipping Tool"},
		},
	},
	{
		Platform: "Windows",
		Category: "Media & Players",
		Entries: []Entry{
			{App: "Spotify.exe", Title: "Spotify"},
			{App: "AniLibrix.exe", Title: "AniLibrix"},
			{App: "vlc.exe", Title: "VLC Media Player"},
			{App: "ui32.exe", Title: "Wallpaper Engine"},
			{App: "Photos.exe", Title: "Microsoft Photos"},
			{App: "obs64.exe", Title: "OBS Studio"},
		},
	},
	{
		Platform: "Windows",
		Category: "Other",
		Entries: []Entry{
			{App: "Flow.Launcher.exe", Title: "Flow Launcher"},
			{App: "steamwebhelper.exe", Title: "Steam Web Helper"},
		},
	},
	{
		Platform: "Linux",
		Category: "Browsers",
		Entries: []Entry{
			{App: "chrome", Title: "Google Chrome"},
			{App: "firefox", Title: "Mozilla Firefox"},
			{App: "zen", Title: "Zen Browser"},
		},
	},
	{
		Platform: "Linux",
		Category: "Chat & Communication",
		Entries: []Entry{
			{App: "discord", Title: "Discord"},
			{App: "org.telegram.desktop", Title: "Telegram"},
		},
	},
	{
		Platform: "Linux",
		Category: "Games",
		Entries: []Entry{
			{App: "steam", Title: "Steam"},
			{App: "steam_app_3557620", Title: "Blue Archive"},
			{App: "steam_app_2357570", Title: "Overwatch"},
			{App: "factorio", Title: "Factorio"},
		},
	},
	{
		Platform: "Linux",
		Category: "Editors & IDEs",
		Entries: []Entry{
			{App: "code", Title: "Visual Studio Code"},
			{App: "code-oss", Title: "Visual Studio Code"},
			{App: "obsidian", Title: "Obsidian"},
		},
	},
	{
		Platform: "Linux",
		Category: "System & Utilities",
		Entries: []Entry{
			{App: "Alacritty", Title: "Alacritty Terminal"},
			{App: "org.gnome.Nautilus", Title: "Files (Nautilus)"},
		},
	},
	{
		Platform: "Linux",
		Category: "Media & Players",
		Entries: []Entry{
			{App: "vlc", Title: "VLC Media Player"},
			{App: "Spotify", Title: "Spotify"},
			{App: "mpv", Title: "mpv Media Player"},
		},
	},
}
